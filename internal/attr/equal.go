package attr

import "math/big"

// Equal reports whether a and b are deeply equal JSON values.
// Numbers are equal when their literals match or when they denote the same
// numeric value ("1.0" equals "1"). Object key order is irrelevant.
func Equal(a, b Value) bool {
	switch av := normalize(a).(type) {
	case Null:
		_, ok := normalize(b).(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && numbersEqual(av, bv)
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, aElem := range av {
			bElem, present := bv[k]
			if !present || !Equal(aElem, bElem) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func normalize(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

func numbersEqual(a, b Number) bool {
	if a == b {
		return true
	}
	af, _, errA := big.ParseFloat(string(a), 10, 256, big.ToNearestEven)
	bf, _, errB := big.ParseFloat(string(b), 10, 256, big.ToNearestEven)
	if errA != nil || errB != nil {
		return false
	}
	return af.Cmp(bf) == 0
}

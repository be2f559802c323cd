package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Kind categorizes store failures.
type Kind uint8

const (
	// KindStorage covers underlying engine I/O failures and anything not
	// classified more precisely (including use before Initialize).
	KindStorage Kind = iota

	// KindConnection indicates the pool could not be established or used.
	KindConnection

	// KindSchema indicates schema application failed or the database
	// schema is inconsistent with what this version expects.
	KindSchema

	// KindConstraint indicates a uniqueness or integrity violation.
	KindConstraint

	// KindSerialization indicates an attribute value could not be
	// converted to or from its JSON text.
	KindSerialization
)

// Sentinel errors for errors.Is matching against a Kind.
var (
	ErrStorage       = errors.New("storage error")
	ErrConnection    = errors.New("connection error")
	ErrSchema        = errors.New("schema error")
	ErrConstraint    = errors.New("constraint violation")
	ErrSerialization = errors.New("serialization error")
)

// ErrNotFound is returned by point reads when no row has the requested ID.
var ErrNotFound = errors.New("record not found")

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindSchema:
		return ErrSchema
	case KindConstraint:
		return ErrConstraint
	case KindSerialization:
		return ErrSerialization
	default:
		return ErrStorage
	}
}

// String returns the human-readable kind name.
func (k Kind) String() string {
	return k.sentinel().Error()
}

// Error is a classified store failure.
//
// Use errors.Is(err, store.ErrConstraint) (or any other sentinel) to test
// the kind; errors.As still reaches the underlying driver error via Unwrap.
type Error struct {
	Kind Kind
	Op   string // "insert entity", "initialize", ...
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for this error's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// classify maps a driver error to a store Error.
// SQLITE_CONSTRAINT (any extended code) becomes KindConstraint.
func classify(op string, err error) *Error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return newError(KindConstraint, op, err)
	}
	return newError(KindStorage, op, err)
}

// KindOf returns the Kind of a store error.
// Errors that did not originate in this package report KindStorage.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStorage
}

// IsConstraint returns true if err is a uniqueness or integrity violation.
// Uses errors.Is to handle wrapped errors.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

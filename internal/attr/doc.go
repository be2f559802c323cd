// Package attr provides the JSON value type used for free-form record
// attributes (entity properties and metadata, action properties).
//
// Values form a small closed variant: Null, Bool, Number, String, Array and
// Object. The storage layer treats them as opaque; semantic typing belongs to
// the callers that produce and consume records.
//
// Key design constraints:
//   - Numbers keep their literal text, never a float64 approximation
//   - Serialization is deterministic (sorted keys, no HTML escaping)
//   - attr imports nothing internal
package attr

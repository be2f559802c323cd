// Package record defines the two persisted fact kinds: Entity and Action.
//
// Records are immutable value objects. Their constructors stamp creation
// time from a Clock exactly once and perform no validation; identity
// (the ID field) is always supplied by the caller, never generated here.
//
// Timestamps are Unix seconds. For an Entity, FirstSeen is set at
// construction and never changes; LastUpdated starts equal to FirstSeen.
// No update path exists yet, so LastUpdated is never refreshed.
package record

// Package store provides SQLite-backed durable storage for LoreDB records.
//
// The store persists two record kinds:
//   - Entities: named things with JSON properties and metadata
//   - Actions: typed, timestamped relationships between two entities
//
// # Lifecycle
//
// Open establishes a bounded connection pool (at most 5 connections) and
// verifies the target is reachable. Initialize applies the embedded schema
// once; the applied version is recorded in PRAGMA user_version so later
// calls are no-ops. Inserts before Initialize fail with a storage error.
//
// # Identity and integrity
//
//   - Record IDs are caller-supplied and unique per table; a duplicate insert
//     fails with ErrConstraint and never overwrites the existing row
//   - Action actor/object IDs must reference existing entities (foreign keys)
//   - first_seen <= last_updated is enforced by a CHECK constraint
//
// # Database Configuration
//
// Every pooled connection is configured through DSN parameters:
//   - WAL mode: Concurrent reads during writes
//   - synchronous=FULL: A committed insert survives power loss
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Attribute values (properties, metadata) are stored as JSON TEXT produced
// by attr.Marshal and decoded with attr.Parse, so they round-trip exactly.
package store

package store

import (
	"context"

	"github.com/roach88/loredb/internal/record"
)

// InsertEntity inserts an entity row.
//
// Properties and Metadata are serialized to JSON TEXT. The insert is a single
// statement and therefore its own implicit transaction: on success the row is
// committed before InsertEntity returns.
//
// Errors:
//   - ErrSerialization if an attribute value cannot be serialized
//   - ErrConstraint if the ID already exists or FirstSeen > LastUpdated
//   - ErrStorage for anything else, including a missing schema
func (s *Store) InsertEntity(ctx context.Context, e record.Entity) error {
	const op = "insert entity"

	propsJSON, err := marshalAttr(op, "properties", e.Properties)
	if err != nil {
		return err
	}
	metaJSON, err := marshalAttr(op, "metadata", e.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities
		(id, type, name, properties, first_seen, last_updated, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.EntityType,
		e.Name,
		propsJSON,
		e.FirstSeen,
		e.LastUpdated,
		metaJSON,
	)
	if err != nil {
		return classify(op, err)
	}

	return nil
}

// InsertAction inserts an action row.
//
// Same contract as InsertEntity. Additionally fails with ErrConstraint when
// ActorEntityID or ObjectEntityID does not reference an existing entity.
func (s *Store) InsertAction(ctx context.Context, a record.Action) error {
	const op = "insert action"

	propsJSON, err := marshalAttr(op, "properties", a.Properties)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO actions
		(id, action_type, actor_entity_id, object_entity_id, timestamp, properties)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.ActionType,
		a.ActorEntityID,
		a.ObjectEntityID,
		a.Timestamp,
		propsJSON,
	)
	if err != nil {
		return classify(op, err)
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/loredb/internal/record"
)

// GetEntity reads the entity with the given ID.
// Returns an error wrapping ErrNotFound if no such entity exists.
func (s *Store) GetEntity(ctx context.Context, id string) (record.Entity, error) {
	const op = "get entity"

	var e record.Entity
	var propsJSON, metaJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, name, properties, first_seen, last_updated, metadata
		FROM entities
		WHERE id = ?
	`, id).Scan(
		&e.ID,
		&e.EntityType,
		&e.Name,
		&propsJSON,
		&e.FirstSeen,
		&e.LastUpdated,
		&metaJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Entity{}, fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return record.Entity{}, classify(op, err)
	}

	if e.Properties, err = unmarshalAttr(op, "properties", propsJSON); err != nil {
		return record.Entity{}, err
	}
	if e.Metadata, err = unmarshalAttr(op, "metadata", metaJSON); err != nil {
		return record.Entity{}, err
	}

	return e, nil
}

// GetAction reads the action with the given ID.
// Returns an error wrapping ErrNotFound if no such action exists.
func (s *Store) GetAction(ctx context.Context, id string) (record.Action, error) {
	const op = "get action"

	var a record.Action
	var propsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, action_type, actor_entity_id, object_entity_id, timestamp, properties
		FROM actions
		WHERE id = ?
	`, id).Scan(
		&a.ID,
		&a.ActionType,
		&a.ActorEntityID,
		&a.ObjectEntityID,
		&a.Timestamp,
		&propsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Action{}, fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return record.Action{}, classify(op, err)
	}

	if a.Properties, err = unmarshalAttr(op, "properties", propsJSON); err != nil {
		return record.Action{}, err
	}

	return a, nil
}

package record

import "github.com/roach88/loredb/internal/attr"

// Entity is a named thing of a given type.
type Entity struct {
	ID          string     `json:"id"`
	EntityType  string     `json:"entity_type"`
	Name        string     `json:"name"`
	Properties  attr.Value `json:"properties"`
	FirstSeen   int64      `json:"first_seen"`   // Unix seconds, set once
	LastUpdated int64      `json:"last_updated"` // Unix seconds, >= FirstSeen
	Metadata    attr.Value `json:"metadata"`     // Provenance/confidence, distinct from Properties
}

// Action is a typed, timestamped relationship between two entities.
type Action struct {
	ID             string     `json:"id"`
	ActionType     string     `json:"action_type"`
	ActorEntityID  string     `json:"actor_entity_id"`
	ObjectEntityID string     `json:"object_entity_id"`
	Timestamp      int64      `json:"timestamp"` // Unix seconds
	Properties     attr.Value `json:"properties"`
}

// NewEntity creates an Entity stamped with the current wall-clock time.
func NewEntity(id, entityType, name string, properties, metadata attr.Value) Entity {
	return NewEntityAt(SystemClock, id, entityType, name, properties, metadata)
}

// NewEntityAt creates an Entity stamped from clock.
// The clock is read once so FirstSeen and LastUpdated are identical.
func NewEntityAt(clock Clock, id, entityType, name string, properties, metadata attr.Value) Entity {
	now := clock.Now().Unix()
	return Entity{
		ID:          id,
		EntityType:  entityType,
		Name:        name,
		Properties:  properties,
		FirstSeen:   now,
		LastUpdated: now,
		Metadata:    metadata,
	}
}

// NewAction creates an Action stamped with the current wall-clock time.
func NewAction(id, actionType, actorEntityID, objectEntityID string, properties attr.Value) Action {
	return NewActionAt(SystemClock, id, actionType, actorEntityID, objectEntityID, properties)
}

// NewActionAt creates an Action stamped from clock.
func NewActionAt(clock Clock, id, actionType, actorEntityID, objectEntityID string, properties attr.Value) Action {
	return Action{
		ID:             id,
		ActionType:     actionType,
		ActorEntityID:  actorEntityID,
		ObjectEntityID: objectEntityID,
		Timestamp:      clock.Now().Unix(),
		Properties:     properties,
	}
}

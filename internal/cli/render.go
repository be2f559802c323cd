package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/loredb/internal/attr"
	"github.com/roach88/loredb/internal/record"
)

// renderEntity formats an entity for text output.
func renderEntity(e record.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entity %s\n", e.ID)
	fmt.Fprintf(&b, "  type:         %s\n", e.EntityType)
	fmt.Fprintf(&b, "  name:         %s\n", e.Name)
	fmt.Fprintf(&b, "  properties:   %s\n", renderAttr(e.Properties))
	fmt.Fprintf(&b, "  metadata:     %s\n", renderAttr(e.Metadata))
	fmt.Fprintf(&b, "  first_seen:   %d\n", e.FirstSeen)
	fmt.Fprintf(&b, "  last_updated: %d\n", e.LastUpdated)
	return b.String()
}

// renderAction formats an action for text output.
func renderAction(a record.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action %s\n", a.ID)
	fmt.Fprintf(&b, "  type:       %s\n", a.ActionType)
	fmt.Fprintf(&b, "  actor:      %s\n", a.ActorEntityID)
	fmt.Fprintf(&b, "  object:     %s\n", a.ObjectEntityID)
	fmt.Fprintf(&b, "  timestamp:  %d\n", a.Timestamp)
	fmt.Fprintf(&b, "  properties: %s\n", renderAttr(a.Properties))
	return b.String()
}

func renderAttr(v attr.Value) string {
	data, err := attr.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}
	return string(data)
}

// parseAttrFlag parses a JSON flag value into an attribute value.
func parseAttrFlag(flag, value string) (attr.Value, error) {
	v, err := attr.Parse([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s JSON: %w", flag, err)
	}
	return v, nil
}

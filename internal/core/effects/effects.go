// Package effects defines effect types as data structures representing I/O operations.
// Services collect effects while a unit of work is open and hand them to the
// shell once it has committed. Effects are pure data - they describe what
// should happen, not how.
package effects

import (
	"encoding/json"
	"fmt"
	"time"
)

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Audit actions.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Provenance describes where a mutation came from.
type Provenance struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// AuditEffect records one committed mutation with its before and after images.
// Snapshots are frozen as JSON when the effect is built so later changes to
// the source values cannot leak into the trail.
type AuditEffect struct {
	EventID    string          `json:"event_id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	Table      string          `json:"table"`
	RowID      int64           `json:"row_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Provenance Provenance      `json:"provenance"`
	At         time.Time       `json:"at"`
}

func (e AuditEffect) EffectType() string { return "audit" }

// Snapshot freezes v as JSON. A nil value yields a nil image; a value that
// cannot be encoded yields an image describing the failure.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(map[string]string{"snapshot_error": fmt.Sprint(err)})
	}
	return b
}

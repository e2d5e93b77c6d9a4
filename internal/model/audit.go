package model

import (
	"encoding/json"
	"time"
)

// AuditEntry is one persisted ChangeEvent.
type AuditEntry struct {
	ID         int64           `json:"id"`
	Entity     string          `json:"entity"`
	EntityID   string          `json:"entity_id"`
	Action     ChangeAction    `json:"action"`
	ActorID    int             `json:"actor_id"`
	Version    int             `json:"version"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

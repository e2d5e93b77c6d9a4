package model

import (
	"encoding/json"
	"time"
)

// Entity names carried by change events.
const (
	EntityTimetableSession = "timetable_session"
	EntityGradingSystem    = "grading_system"
)

// ChangeAction enumerates the mutations that produce change events.
type ChangeAction string

const (
	ChangeCreated       ChangeAction = "created"
	ChangeUpdated       ChangeAction = "updated"
	ChangeDeleted       ChangeAction = "deleted"
	ChangeStatusChanged ChangeAction = "status_changed"
)

// ChangeEvent describes one committed mutation. It is broadcast on Redis
// Pub/Sub for live editors and queued for the audit log.
type ChangeEvent struct {
	Entity   string          `json:"entity"`
	EntityID string          `json:"entity_id"`
	Action   ChangeAction    `json:"action"`
	ClassIDs []int           `json:"class_ids,omitempty"`
	ActorID  int             `json:"actor_id"`
	Version  int             `json:"version"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
	At       time.Time       `json:"at"`
}

package websocket

import (
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/schedule"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing  Action = "ping"
	ActionCheck Action = "check"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// CheckRequest asks for a live conflict check of the session being edited.
// RequestID is echoed back so the editor can drop stale answers.
type CheckRequest struct {
	Action    Action                      `json:"action"`
	RequestID string                      `json:"request_id"`
	Candidate model.CheckConflictsRequest `json:"candidate"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventReady     Event = "ready"
	EventChange    Event = "change"
	EventConflicts Event = "conflicts"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ReadyResponse is sent once the subscription is live.
type ReadyResponse struct {
	Event   Event `json:"event"`
	ClassID int   `json:"class_id"`
}

// ChangeResponse relays one committed mutation of the class timetable.
type ChangeResponse struct {
	Event  Event             `json:"event"`
	Change model.ChangeEvent `json:"change"`
}

// ConflictsResponse answers a CheckRequest.
type ConflictsResponse struct {
	Event     Event               `json:"event"`
	RequestID string              `json:"request_id,omitempty"`
	OK        bool                `json:"ok"`
	Conflicts []schedule.Conflict `json:"conflicts"`
	Fields    map[string]string   `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Event     Event  `json:"event"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

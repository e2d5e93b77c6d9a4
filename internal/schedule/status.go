package schedule

import (
	"errors"

	"github.com/stemsi/jadwal-backend/internal/model"
)

// ErrInvalidTransition is returned for a status move the lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid timetable status transition")

// transitions lists the allowed moves. Draft and locked are never adjacent.
var transitions = map[model.SessionStatus][]model.SessionStatus{
	model.SessionStatusDraft:     {model.SessionStatusPublished},
	model.SessionStatusPublished: {model.SessionStatusDraft, model.SessionStatusLocked},
	model.SessionStatusLocked:    {model.SessionStatusPublished},
}

// CanTransition reports whether a session may move from one status to another.
func CanTransition(from, to model.SessionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition is CanTransition returning ErrInvalidTransition.
func CheckTransition(from, to model.SessionStatus) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// IsVisible reports whether students and the public feed see the session.
func IsVisible(status model.SessionStatus) bool {
	return status == model.SessionStatusPublished || status == model.SessionStatusLocked
}

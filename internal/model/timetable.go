package model

import (
	"time"

	"github.com/google/uuid"
)

// DayOfWeek enumerates the days a session can recur on.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// AllDays lists the days in calendar order.
var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d is one of the seven known days.
func (d DayOfWeek) Valid() bool {
	for _, day := range AllDays {
		if d == day {
			return true
		}
	}
	return false
}

// SessionStatus enumerates the lifecycle states of a timetable session.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusPublished SessionStatus = "published"
	SessionStatusLocked    SessionStatus = "locked"
)

// TimetableSession is one recurring weekly meeting of a class with a teacher.
type TimetableSession struct {
	ID          uuid.UUID     `json:"id"`
	ClassID     int           `json:"class_id"`
	TeacherID   int           `json:"teacher_id"`
	TeacherName string        `json:"teacher_name,omitempty"`
	SubjectID   int           `json:"subject_id"`
	Subject     string        `json:"subject"`
	DayOfWeek   DayOfWeek     `json:"day_of_week"`
	StartTime   TimeOfDay     `json:"start_time"`
	EndTime     TimeOfDay     `json:"end_time"`
	Room        *string       `json:"room,omitempty"`
	Status      SessionStatus `json:"status"`
	Version     int           `json:"version"`
	CreatedBy   int           `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TimetableFilter narrows a session listing. Zero values mean "any".
type TimetableFilter struct {
	ClassID   int
	TeacherID int
	DayOfWeek DayOfWeek
	Status    SessionStatus
}

// TimetableSessionRequest is the payload for creating a session.
type TimetableSessionRequest struct {
	ClassID   int     `json:"class_id" binding:"required,min=1"`
	TeacherID int     `json:"teacher_id" binding:"required,min=1"`
	SubjectID int     `json:"subject_id" binding:"required,min=1"`
	DayOfWeek string  `json:"day_of_week" binding:"required,dayofweek"`
	StartTime string  `json:"start_time" binding:"required,timeofday"`
	EndTime   string  `json:"end_time" binding:"required,timeofday"`
	Room      *string `json:"room" binding:"omitempty,max=50"`
}

// UpdateTimetableSessionRequest is the payload for editing a session in place.
type UpdateTimetableSessionRequest struct {
	TimetableSessionRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ChangeSessionStatusRequest moves a session through draft/published/locked.
type ChangeSessionStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=draft published locked"`
	Version int    `json:"version" binding:"required,min=1"`
}

// CheckConflictsRequest asks for a dry-run conflict check of a candidate.
type CheckConflictsRequest struct {
	ClassID   int        `json:"class_id" binding:"required,min=1"`
	TeacherID int        `json:"teacher_id" binding:"required,min=1"`
	SubjectID int        `json:"subject_id" binding:"omitempty,min=1"`
	DayOfWeek string     `json:"day_of_week" binding:"required,dayofweek"`
	StartTime string     `json:"start_time" binding:"required,timeofday"`
	EndTime   string     `json:"end_time" binding:"required,timeofday"`
	ExcludeID *uuid.UUID `json:"exclude_id" binding:"omitempty"`
}

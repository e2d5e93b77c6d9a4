// Package schedule detects collisions between recurring weekly timetable
// sessions. Everything here is pure: callers pass a snapshot of existing
// sessions and act on the returned diagnostics.
package schedule

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// Input validation errors for a Candidate.
var (
	ErrInvalidDay   = errors.New("day_of_week bukan nama hari yang valid")
	ErrEmptyRange   = errors.New("start_time harus lebih awal dari end_time")
	ErrOutOfDay     = errors.New("sesi harus selesai paling lambat 24:00")
	ErrMissingParty = errors.New("class_id dan teacher_id wajib diisi")
)

// ConflictKind identifies which rule a conflict violates.
type ConflictKind string

const (
	// ConflictTeacherDoubleBooked means the teacher already teaches at that time.
	ConflictTeacherDoubleBooked ConflictKind = "teacher_double_booked"
	// ConflictClassSlotTaken means the class already has a session at that time.
	ConflictClassSlotTaken ConflictKind = "class_slot_taken"
)

// Candidate is a proposed session, new or edited in place.
type Candidate struct {
	ClassID   int
	TeacherID int
	Subject   string
	DayOfWeek model.DayOfWeek
	StartTime model.TimeOfDay
	EndTime   model.TimeOfDay
	// ExcludeID is the id of the session being edited, if any.
	ExcludeID *uuid.UUID
}

// CandidateFromSession builds a Candidate that edits s in place.
func CandidateFromSession(s model.TimetableSession) Candidate {
	id := s.ID
	return Candidate{
		ClassID:   s.ClassID,
		TeacherID: s.TeacherID,
		Subject:   s.Subject,
		DayOfWeek: s.DayOfWeek,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		ExcludeID: &id,
	}
}

// Validate rejects candidates that DetectConflicts would silently accept,
// most notably zero-length sessions.
func (c Candidate) Validate() error {
	if c.ClassID <= 0 || c.TeacherID <= 0 {
		return ErrMissingParty
	}
	if !c.DayOfWeek.Valid() {
		return ErrInvalidDay
	}
	if c.StartTime < 0 || c.EndTime > model.MinutesPerDay {
		return ErrOutOfDay
	}
	if c.StartTime >= c.EndTime {
		return ErrEmptyRange
	}
	return nil
}

// Conflict describes one existing session that collides with the candidate.
type Conflict struct {
	Kind      ConflictKind    `json:"kind"`
	SessionID uuid.UUID       `json:"session_id"`
	ClassID   int             `json:"class_id"`
	TeacherID int             `json:"teacher_id"`
	Subject   string          `json:"subject"`
	DayOfWeek model.DayOfWeek `json:"day_of_week"`
	StartTime model.TimeOfDay `json:"start_time"`
	EndTime   model.TimeOfDay `json:"end_time"`
	Message   string          `json:"message"`
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) share at least one minute. Back-to-back ranges do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd model.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// DetectConflicts compares the candidate against existing sessions and
// returns every teacher or class collision found. An empty result means the
// candidate is safe to save. The existing slice is not modified.
func DetectConflicts(c Candidate, existing []model.TimetableSession) []Conflict {
	conflicts := make([]Conflict, 0)

	for _, s := range existing {
		if c.ExcludeID != nil && s.ID == *c.ExcludeID {
			continue
		}
		if s.DayOfWeek != c.DayOfWeek {
			continue
		}
		if !Overlaps(c.StartTime, c.EndTime, s.StartTime, s.EndTime) {
			continue
		}

		if s.TeacherID == c.TeacherID {
			conflicts = append(conflicts, newConflict(ConflictTeacherDoubleBooked, c, s))
		}
		if s.ClassID == c.ClassID {
			conflicts = append(conflicts, newConflict(ConflictClassSlotTaken, c, s))
		}
	}

	return conflicts
}

func newConflict(kind ConflictKind, c Candidate, s model.TimetableSession) Conflict {
	return Conflict{
		Kind:      kind,
		SessionID: s.ID,
		ClassID:   s.ClassID,
		TeacherID: s.TeacherID,
		Subject:   s.Subject,
		DayOfWeek: s.DayOfWeek,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Message:   describe(kind, c, s),
	}
}

func describe(kind ConflictKind, c Candidate, s model.TimetableSession) string {
	proposed := label(c.Subject)
	existing := label(s.Subject)
	day := dayName(s.DayOfWeek)

	switch kind {
	case ConflictTeacherDoubleBooked:
		who := s.TeacherName
		if who == "" {
			who = fmt.Sprintf("guru #%d", s.TeacherID)
		}
		return fmt.Sprintf("%s sudah mengajar %s pada hari %s %s-%s; %s %s-%s membuat jadwal guru bentrok",
			who, existing, day, s.StartTime, s.EndTime, proposed, c.StartTime, c.EndTime)
	default:
		return fmt.Sprintf("kelas #%d sudah memiliki %s pada hari %s %s-%s, bertabrakan dengan %s %s-%s",
			s.ClassID, existing, day, s.StartTime, s.EndTime, proposed, c.StartTime, c.EndTime)
	}
}

func label(subject string) string {
	if subject == "" {
		return "sesi lain"
	}
	return subject
}

var dayNames = map[model.DayOfWeek]string{
	model.Monday:    "Senin",
	model.Tuesday:   "Selasa",
	model.Wednesday: "Rabu",
	model.Thursday:  "Kamis",
	model.Friday:    "Jumat",
	model.Saturday:  "Sabtu",
	model.Sunday:    "Minggu",
}

func dayName(d model.DayOfWeek) string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return string(d)
}

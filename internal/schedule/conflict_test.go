package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) model.TimeOfDay { return model.MustParseTimeOfDay(s) }

func session(classID, teacherID int, day model.DayOfWeek, start, end, subject string) model.TimetableSession {
	return model.TimetableSession{
		ID:        uuid.New(),
		ClassID:   classID,
		TeacherID: teacherID,
		Subject:   subject,
		DayOfWeek: day,
		StartTime: at(start),
		EndTime:   at(end),
		Status:    model.SessionStatusDraft,
	}
}

func candidate(classID, teacherID int, day model.DayOfWeek, start, end string) Candidate {
	return Candidate{
		ClassID:   classID,
		TeacherID: teacherID,
		Subject:   "Matematika",
		DayOfWeek: day,
		StartTime: at(start),
		EndTime:   at(end),
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"partial", "09:00", "10:00", "09:30", "10:30", true},
		{"contained", "08:00", "12:00", "09:00", "10:00", true},
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"adjacent after", "09:00", "10:00", "10:00", "11:00", false},
		{"adjacent before", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "07:00", "08:00", "13:00", "14:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(at(tc.aStart), at(tc.aEnd), at(tc.bStart), at(tc.bEnd))
			assert.Equal(t, tc.want, got)
			// The test is symmetric in its arguments.
			assert.Equal(t, got, Overlaps(at(tc.bStart), at(tc.bEnd), at(tc.aStart), at(tc.aEnd)))
		})
	}
}

func TestDetectConflicts_TeacherOverlap(t *testing.T) {
	existing := []model.TimetableSession{
		session(2, 7, model.Monday, "09:00", "10:00", "Fisika"),
	}

	got := DetectConflicts(candidate(1, 7, model.Monday, "09:30", "10:30"), existing)

	require.Len(t, got, 1)
	assert.Equal(t, ConflictTeacherDoubleBooked, got[0].Kind)
	assert.Equal(t, existing[0].ID, got[0].SessionID)
	assert.Contains(t, got[0].Message, "Fisika")
	assert.Contains(t, got[0].Message, "Matematika")
	assert.Contains(t, got[0].Message, "09:00-10:00")
	assert.Contains(t, got[0].Message, "Senin")
	assert.Contains(t, got[0].Message, "bentrok")
}

func TestDetectConflicts_ClassOverlap(t *testing.T) {
	existing := []model.TimetableSession{
		session(1, 8, model.Tuesday, "07:00", "08:30", "Biologi"),
	}

	got := DetectConflicts(candidate(1, 7, model.Tuesday, "08:00", "09:00"), existing)

	require.Len(t, got, 1)
	assert.Equal(t, ConflictClassSlotTaken, got[0].Kind)
}

func TestDetectConflicts_SameTeacherAndClassReportsBoth(t *testing.T) {
	existing := []model.TimetableSession{
		session(1, 7, model.Monday, "09:00", "10:00", "Fisika"),
	}

	got := DetectConflicts(candidate(1, 7, model.Monday, "09:00", "10:00"), existing)

	require.Len(t, got, 2)
	assert.Equal(t, ConflictTeacherDoubleBooked, got[0].Kind)
	assert.Equal(t, ConflictClassSlotTaken, got[1].Kind)
}

func TestDetectConflicts_AdjacentIsNotConflict(t *testing.T) {
	existing := []model.TimetableSession{
		session(1, 7, model.Monday, "09:00", "10:00", "Fisika"),
	}

	got := DetectConflicts(candidate(1, 7, model.Monday, "10:00", "11:00"), existing)

	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestDetectConflicts_DifferentDaysNeverConflict(t *testing.T) {
	existing := []model.TimetableSession{
		session(1, 7, model.Monday, "09:00", "10:00", "Fisika"),
	}

	for _, day := range model.AllDays {
		if day == model.Monday {
			continue
		}
		assert.Empty(t, DetectConflicts(candidate(1, 7, day, "09:00", "10:00"), existing), day)
	}
}

func TestDetectConflicts_UnrelatedSessionIgnored(t *testing.T) {
	existing := []model.TimetableSession{
		session(3, 9, model.Monday, "09:00", "10:00", "Sejarah"),
	}

	assert.Empty(t, DetectConflicts(candidate(1, 7, model.Monday, "09:00", "10:00"), existing))
}

func TestDetectConflicts_NoSelfConflict(t *testing.T) {
	self := session(1, 7, model.Wednesday, "10:00", "11:30", "Kimia")
	other := session(4, 5, model.Wednesday, "13:00", "14:00", "Seni")

	got := DetectConflicts(CandidateFromSession(self), []model.TimetableSession{self, other})

	assert.Empty(t, got)
}

func TestDetectConflicts_EditStillSeesOthers(t *testing.T) {
	self := session(1, 7, model.Wednesday, "10:00", "11:00", "Kimia")
	other := session(2, 7, model.Wednesday, "11:00", "12:00", "Kimia")

	moved := CandidateFromSession(self)
	moved.StartTime, moved.EndTime = at("10:30"), at("11:30")

	got := DetectConflicts(moved, []model.TimetableSession{self, other})

	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].SessionID)
}

func TestDetectConflicts_Symmetric(t *testing.T) {
	a := session(1, 7, model.Friday, "09:00", "10:00", "A")
	b := session(2, 7, model.Friday, "09:30", "10:30", "B")

	ab := DetectConflicts(CandidateFromSession(a), []model.TimetableSession{b})
	ba := DetectConflicts(CandidateFromSession(b), []model.TimetableSession{a})

	require.Len(t, ab, 1)
	require.Len(t, ba, 1)
	assert.Equal(t, ab[0].Kind, ba[0].Kind)
}

func TestDetectConflicts_Idempotent(t *testing.T) {
	existing := []model.TimetableSession{
		session(1, 7, model.Monday, "09:00", "10:00", "Fisika"),
		session(2, 7, model.Monday, "09:45", "11:00", "Fisika"),
		session(1, 8, model.Monday, "10:30", "12:00", "Biologi"),
	}
	c := candidate(1, 7, model.Monday, "09:30", "10:45")

	first := DetectConflicts(c, existing)
	second := DetectConflicts(c, existing)

	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestCandidateValidate(t *testing.T) {
	ok := candidate(1, 7, model.Monday, "09:00", "10:00")
	require.NoError(t, ok.Validate())

	zero := candidate(1, 7, model.Monday, "09:00", "09:00")
	assert.ErrorIs(t, zero.Validate(), ErrEmptyRange)

	backwards := candidate(1, 7, model.Monday, "10:00", "09:00")
	assert.ErrorIs(t, backwards.Validate(), ErrEmptyRange)

	badDay := candidate(1, 7, model.DayOfWeek("FUNDAY"), "09:00", "10:00")
	assert.ErrorIs(t, badDay.Validate(), ErrInvalidDay)

	noTeacher := candidate(1, 0, model.Monday, "09:00", "10:00")
	assert.ErrorIs(t, noTeacher.Validate(), ErrMissingParty)

	lateEnd := candidate(1, 7, model.Monday, "23:00", "23:00")
	lateEnd.EndTime = model.MinutesPerDay + 30
	assert.ErrorIs(t, lateEnd.Validate(), ErrOutOfDay)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
	"github.com/stemsi/jadwal-backend/internal/schedule"
)

// Timetable errors.
var (
	ErrSessionLocked = errors.New("timetable session is locked")
	ErrNotATeacher   = errors.New("account is not linked to a teacher")
)

// ConflictError carries the collisions that blocked a timetable write.
type ConflictError struct {
	Conflicts []schedule.Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "scheduling conflict"
	}
	return fmt.Sprintf("%d scheduling conflict(s): %s", len(e.Conflicts), e.Conflicts[0].Message)
}

// TimetableStore is the persistence the timetable service needs.
// Implemented by repository.TimetableRepository.
type TimetableStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimetableSession, error)
	List(ctx context.Context, f model.TimetableFilter) ([]model.TimetableSession, error)
	ListForConflictCheck(ctx context.Context, day model.DayOfWeek, classID, teacherID int) ([]model.TimetableSession, error)
	ListPublishedByClass(ctx context.Context, classID int) ([]model.TimetableSession, error)
	Create(ctx context.Context, s *model.TimetableSession, guard repository.SessionGuard) error
	Update(ctx context.Context, s *model.TimetableSession, expectedVersion int, guard repository.SessionGuard) error
	UpdateStatus(ctx context.Context, current *model.TimetableSession, status model.SessionStatus, expectedVersion int, guard repository.SessionGuard) (*model.TimetableSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubjectLookup resolves subject ids to names for conflict messages.
type SubjectLookup interface {
	GetByID(ctx context.Context, id int) (*model.Subject, error)
}

// TimetableCache stores the published timetable per class.
// Implemented by broker.TimetableCache.
//
// Every Invalidate bumps the class generation. SetPublished stores only when
// the generation still equals the one read before loading the rows, so a
// read that raced a write cannot put the older rows back.
type TimetableCache interface {
	GetPublished(ctx context.Context, classID int) ([]model.TimetableSession, bool, error)
	Generation(ctx context.Context, classID int) (int64, error)
	SetPublished(ctx context.Context, classID int, generation int64, sessions []model.TimetableSession) (bool, error)
	Invalidate(ctx context.Context, classIDs ...int) error
}

// ChangePublisher broadcasts committed mutations. Implemented by broker.ChangeFeed.
type ChangePublisher interface {
	Publish(ctx context.Context, ev model.ChangeEvent) error
}

// TimetableService owns the timetable session lifecycle: conflict-checked
// writes, status transitions, and the published view.
type TimetableService struct {
	store     TimetableStore
	subjects  SubjectLookup
	cache     TimetableCache
	publisher ChangePublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewTimetableService creates a new TimetableService.
func NewTimetableService(
	store TimetableStore,
	subjects SubjectLookup,
	cache TimetableCache,
	publisher ChangePublisher,
	log zerolog.Logger,
) *TimetableService {
	return &TimetableService{
		store:     store,
		subjects:  subjects,
		cache:     cache,
		publisher: publisher,
		log:       log.With().Str("component", "timetable_service").Logger(),
		now:       time.Now,
	}
}

// List returns sessions matching the filter.
func (s *TimetableService) List(ctx context.Context, f model.TimetableFilter) ([]model.TimetableSession, error) {
	return s.store.List(ctx, f)
}

// GetByID returns one session.
func (s *TimetableService) GetByID(ctx context.Context, id uuid.UUID) (*model.TimetableSession, error) {
	session, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return session, nil
}

// ForTeacher returns every session taught by teacherID, drafts included.
func (s *TimetableService) ForTeacher(ctx context.Context, teacherID *int) ([]model.TimetableSession, error) {
	if teacherID == nil {
		return nil, ErrNotATeacher
	}
	return s.store.List(ctx, model.TimetableFilter{TeacherID: *teacherID})
}

// CheckConflicts runs detection for a candidate without saving anything.
func (s *TimetableService) CheckConflicts(ctx context.Context, req model.CheckConflictsRequest) ([]schedule.Conflict, error) {
	cand, err := candidateFrom(req.ClassID, req.TeacherID, req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	cand.ExcludeID = req.ExcludeID
	if req.SubjectID > 0 {
		subject, err := s.subjects.GetByID(ctx, req.SubjectID)
		if err != nil {
			return nil, referenceErr(err)
		}
		cand.Subject = subject.Name
	}

	existing, err := s.store.ListForConflictCheck(ctx, cand.DayOfWeek, cand.ClassID, cand.TeacherID)
	if err != nil {
		return nil, err
	}
	return schedule.DetectConflicts(cand, existing), nil
}

// Create saves a new draft session if it collides with nothing.
func (s *TimetableService) Create(ctx context.Context, actorID int, req model.TimetableSessionRequest) (*model.TimetableSession, error) {
	session, cand, err := s.sessionFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	session.Status = model.SessionStatusDraft
	session.CreatedBy = actorID

	if err := s.store.Create(ctx, session, conflictGuard(cand)); err != nil {
		return nil, writeErr(err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("class_id", session.ClassID).
		Int("teacher_id", session.TeacherID).
		Msg("Timetable session created")

	s.afterCommit(ctx, actorID, session, model.ChangeCreated, session.ClassID)
	return session, nil
}

// Update edits a session in place. The caller's version must match the
// stored one and the session must not be locked.
func (s *TimetableService) Update(ctx context.Context, actorID int, id uuid.UUID, req model.UpdateTimetableSessionRequest) (*model.TimetableSession, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == model.SessionStatusLocked {
		return nil, ErrSessionLocked
	}
	if current.Version != req.Version {
		return nil, ErrStaleVersion
	}

	session, cand, err := s.sessionFromRequest(ctx, req.TimetableSessionRequest)
	if err != nil {
		return nil, err
	}
	session.ID = id
	cand.ExcludeID = &id

	if err := s.store.Update(ctx, session, req.Version, conflictGuard(cand)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleVersion
		}
		return nil, writeErr(err)
	}

	s.afterCommit(ctx, actorID, session, model.ChangeUpdated, current.ClassID, session.ClassID)
	return session, nil
}

// ChangeStatus moves a session along draft <-> published <-> locked.
// Publishing a draft re-runs conflict detection first.
func (s *TimetableService) ChangeStatus(ctx context.Context, actorID int, id uuid.UUID, req model.ChangeSessionStatusRequest) (*model.TimetableSession, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	to := model.SessionStatus(req.Status)
	if err := schedule.CheckTransition(current.Status, to); err != nil {
		return nil, err
	}
	if current.Version != req.Version {
		return nil, ErrStaleVersion
	}

	var guard repository.SessionGuard
	if current.Status == model.SessionStatusDraft && to == model.SessionStatusPublished {
		guard = conflictGuard(schedule.CandidateFromSession(*current))
	}

	updated, err := s.store.UpdateStatus(ctx, current, to, req.Version, guard)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleVersion
		}
		return nil, writeErr(err)
	}

	s.log.Info().
		Str("session_id", id.String()).
		Str("from", string(current.Status)).
		Str("to", string(to)).
		Msg("Timetable session status changed")

	s.afterCommit(ctx, actorID, updated, model.ChangeStatusChanged, updated.ClassID)
	return updated, nil
}

// Delete removes a session that is not locked.
func (s *TimetableService) Delete(ctx context.Context, actorID int, id uuid.UUID) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == model.SessionStatusLocked {
		return ErrSessionLocked
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Locked or removed between the read and the delete.
			if again, getErr := s.store.GetByID(ctx, id); getErr == nil && again.Status == model.SessionStatusLocked {
				return ErrSessionLocked
			}
			return ErrNotFound
		}
		return err
	}

	s.afterCommit(ctx, actorID, current, model.ChangeDeleted, current.ClassID)
	return nil
}

// PublishedForClass returns what students of a class see: published and
// locked sessions, served from the cache when possible.
func (s *TimetableService) PublishedForClass(ctx context.Context, classID int) ([]model.TimetableSession, error) {
	fill := false
	var gen int64
	if s.cache != nil {
		sessions, ok, err := s.cache.GetPublished(ctx, classID)
		if err != nil {
			s.log.Warn().Err(err).Int("class_id", classID).Msg("Timetable cache read failed, falling back to database")
		} else if ok {
			return sessions, nil
		}
		if gen, err = s.cache.Generation(ctx, classID); err != nil {
			s.log.Warn().Err(err).Int("class_id", classID).Msg("Timetable cache generation read failed")
		} else {
			fill = true
		}
	}

	sessions, err := s.store.ListPublishedByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	if fill {
		stored, err := s.cache.SetPublished(ctx, classID, gen, sessions)
		if err != nil {
			s.log.Warn().Err(err).Int("class_id", classID).Msg("Timetable cache write failed")
		} else if !stored {
			s.log.Debug().Int("class_id", classID).Msg("Timetable changed during read, cache fill skipped")
		}
	}
	return sessions, nil
}

// WarmCache rebuilds the published timetable cache of the given classes and
// returns how many were stored.
func (s *TimetableService) WarmCache(ctx context.Context, classIDs []int) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	warmed := 0
	for _, id := range classIDs {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		gen, err := s.cache.Generation(ctx, id)
		if err != nil {
			return warmed, fmt.Errorf("cache generation of class %d: %w", id, err)
		}
		sessions, err := s.store.ListPublishedByClass(ctx, id)
		if err != nil {
			return warmed, fmt.Errorf("load class %d: %w", id, err)
		}
		stored, err := s.cache.SetPublished(ctx, id, gen, sessions)
		if err != nil {
			return warmed, fmt.Errorf("cache class %d: %w", id, err)
		}
		// A skipped class was invalidated mid-load; the next read refills it.
		if stored {
			warmed++
		}
	}
	return warmed, nil
}

// ─── helpers ────────────────────────────────────────────────────────

// sessionFromRequest parses and validates a request into a session and the
// matching conflict candidate.
func (s *TimetableService) sessionFromRequest(ctx context.Context, req model.TimetableSessionRequest) (*model.TimetableSession, schedule.Candidate, error) {
	cand, err := candidateFrom(req.ClassID, req.TeacherID, req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return nil, cand, err
	}

	subject, err := s.subjects.GetByID(ctx, req.SubjectID)
	if err != nil {
		return nil, cand, referenceErr(err)
	}
	cand.Subject = subject.Name

	room := req.Room
	if room != nil {
		trimmed := strings.TrimSpace(*room)
		if trimmed == "" {
			room = nil
		} else {
			room = &trimmed
		}
	}

	return &model.TimetableSession{
		ClassID:   cand.ClassID,
		TeacherID: cand.TeacherID,
		SubjectID: subject.ID,
		Subject:   subject.Name,
		DayOfWeek: cand.DayOfWeek,
		StartTime: cand.StartTime,
		EndTime:   cand.EndTime,
		Room:      room,
	}, cand, nil
}

func candidateFrom(classID, teacherID int, day, start, end string) (schedule.Candidate, error) {
	cand := schedule.Candidate{
		ClassID:   classID,
		TeacherID: teacherID,
		DayOfWeek: model.DayOfWeek(strings.ToUpper(strings.TrimSpace(day))),
	}

	var err error
	if cand.StartTime, err = model.ParseTimeOfDay(start); err != nil {
		return cand, fmt.Errorf("start_time: %w", err)
	}
	if cand.EndTime, err = model.ParseTimeOfDay(end); err != nil {
		return cand, fmt.Errorf("end_time: %w", err)
	}
	return cand, cand.Validate()
}

// conflictGuard blocks a write when the candidate collides with anything.
func conflictGuard(cand schedule.Candidate) repository.SessionGuard {
	return func(existing []model.TimetableSession) error {
		if conflicts := schedule.DetectConflicts(cand, existing); len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		return nil
	}
}

func writeErr(err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict
	}
	return storeErr(err)
}

// referenceErr turns a missing referenced row into ErrInvalidReference.
func referenceErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return ErrInvalidReference
	}
	return err
}

// afterCommit invalidates cached timetables of the touched classes and
// broadcasts the change. Failures are logged; the write already succeeded.
func (s *TimetableService) afterCommit(ctx context.Context, actorID int, session *model.TimetableSession, action model.ChangeAction, classIDs ...int) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, classIDs...); err != nil {
			s.log.Warn().Err(err).Ints("class_ids", classIDs).Msg("Timetable cache invalidation failed")
		}
	}
	if s.publisher == nil {
		return
	}

	snapshot, _ := json.Marshal(session)
	ev := model.ChangeEvent{
		Entity:   model.EntityTimetableSession,
		EntityID: session.ID.String(),
		Action:   action,
		ClassIDs: classIDs,
		ActorID:  actorID,
		Version:  session.Version,
		Snapshot: snapshot,
		At:       s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("session_id", ev.EntityID).Msg("Change event publish failed")
	}
}

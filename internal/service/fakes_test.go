package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

// ─── timetable store ────────────────────────────────────────────────

type fakeTimetableStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.TimetableSession
	teachers map[int]string

	// onListPublished runs after the published rows are loaded, outside the lock.
	onListPublished func(classID int)
}

func newFakeTimetableStore() *fakeTimetableStore {
	return &fakeTimetableStore{
		sessions: map[uuid.UUID]model.TimetableSession{},
		teachers: map[int]string{},
	}
}

func (f *fakeTimetableStore) GetByID(_ context.Context, id uuid.UUID) (*model.TimetableSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (f *fakeTimetableStore) List(_ context.Context, filter model.TimetableFilter) ([]model.TimetableSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.TimetableSession{}
	for _, s := range f.sessions {
		if filter.ClassID > 0 && s.ClassID != filter.ClassID {
			continue
		}
		if filter.TeacherID > 0 && s.TeacherID != filter.TeacherID {
			continue
		}
		if filter.DayOfWeek != "" && s.DayOfWeek != filter.DayOfWeek {
			continue
		}
		out = append(out, s)
	}
	sortSessions(out)
	return out, nil
}

func (f *fakeTimetableStore) ListForConflictCheck(_ context.Context, day model.DayOfWeek, classID, teacherID int) ([]model.TimetableSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sameDay(day, classID, teacherID), nil
}

func (f *fakeTimetableStore) ListPublishedByClass(_ context.Context, classID int) ([]model.TimetableSession, error) {
	f.mu.Lock()
	out := []model.TimetableSession{}
	for _, s := range f.sessions {
		if s.ClassID == classID && s.Status != model.SessionStatusDraft {
			out = append(out, s)
		}
	}
	hook := f.onListPublished
	f.mu.Unlock()

	sortSessions(out)
	if hook != nil {
		hook(classID)
	}
	return out, nil
}

func (f *fakeTimetableStore) Create(_ context.Context, s *model.TimetableSession, guard repository.SessionGuard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if guard != nil {
		if err := guard(f.sameDay(s.DayOfWeek, s.ClassID, s.TeacherID)); err != nil {
			return err
		}
	}
	s.ID = uuid.New()
	s.Version = 1
	s.TeacherName = f.teachers[s.TeacherID]
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeTimetableStore) Update(_ context.Context, s *model.TimetableSession, expectedVersion int, guard repository.SessionGuard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if guard != nil {
		if err := guard(f.sameDay(s.DayOfWeek, s.ClassID, s.TeacherID)); err != nil {
			return err
		}
	}
	cur, ok := f.sessions[s.ID]
	if !ok || cur.Version != expectedVersion {
		return pgx.ErrNoRows
	}
	s.Version = cur.Version + 1
	s.Status = cur.Status
	s.CreatedBy = cur.CreatedBy
	s.TeacherName = f.teachers[s.TeacherID]
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeTimetableStore) UpdateStatus(_ context.Context, current *model.TimetableSession, status model.SessionStatus, expectedVersion int, guard repository.SessionGuard) (*model.TimetableSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if guard != nil {
		if err := guard(f.sameDay(current.DayOfWeek, current.ClassID, current.TeacherID)); err != nil {
			return nil, err
		}
	}
	cur, ok := f.sessions[current.ID]
	if !ok || cur.Version != expectedVersion {
		return nil, pgx.ErrNoRows
	}
	cur.Status = status
	cur.Version++
	f.sessions[cur.ID] = cur
	return &cur, nil
}

func (f *fakeTimetableStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.sessions[id]
	if !ok || cur.Status == model.SessionStatusLocked {
		return pgx.ErrNoRows
	}
	delete(f.sessions, id)
	return nil
}

// put stores a session directly, bypassing conflict checks.
func (f *fakeTimetableStore) put(s model.TimetableSession) model.TimetableSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Status == "" {
		s.Status = model.SessionStatusDraft
	}
	f.sessions[s.ID] = s
	return s
}

func (f *fakeTimetableStore) sameDay(day model.DayOfWeek, classID, teacherID int) []model.TimetableSession {
	out := []model.TimetableSession{}
	for _, s := range f.sessions {
		if s.DayOfWeek == day && (s.ClassID == classID || s.TeacherID == teacherID) {
			out = append(out, s)
		}
	}
	sortSessions(out)
	return out
}

func sortSessions(s []model.TimetableSession) {
	sort.Slice(s, func(i, j int) bool { return s[i].StartTime < s[j].StartTime })
}

// ─── subjects ───────────────────────────────────────────────────────

type fakeSubjects map[int]string

func (f fakeSubjects) GetByID(_ context.Context, id int) (*model.Subject, error) {
	name, ok := f[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &model.Subject{ID: id, Name: name}, nil
}

// ─── cache ──────────────────────────────────────────────────────────

type fakeCache struct {
	mu          sync.Mutex
	entries     map[int][]model.TimetableSession
	generations map[int]int64
	invalidated []int
	sets        int
	skipped     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:     map[int][]model.TimetableSession{},
		generations: map[int]int64{},
	}
}

func (c *fakeCache) Generation(_ context.Context, classID int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[classID], nil
}

func (c *fakeCache) GetPublished(_ context.Context, classID int) ([]model.TimetableSession, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[classID]
	return s, ok, nil
}

func (c *fakeCache) SetPublished(_ context.Context, classID int, generation int64, sessions []model.TimetableSession) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[classID] != generation {
		c.skipped++
		return false, nil
	}
	c.entries[classID] = sessions
	c.sets++
	return true, nil
}

func (c *fakeCache) Invalidate(_ context.Context, classIDs ...int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range classIDs {
		delete(c.entries, id)
		c.generations[id]++
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

// ─── publisher ──────────────────────────────────────────────────────

type fakePublisher struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (p *fakePublisher) Publish(_ context.Context, ev model.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) last() model.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

// ─── grading store ──────────────────────────────────────────────────

type fakeGradingStore struct {
	mu      sync.Mutex
	systems map[uuid.UUID]model.GradingSystem
	writes  int
}

func newFakeGradingStore() *fakeGradingStore {
	return &fakeGradingStore{systems: map[uuid.UUID]model.GradingSystem{}}
}

func (f *fakeGradingStore) List(_ context.Context) ([]model.GradingSystem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.GradingSystem{}
	for _, g := range f.systems {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGradingStore) GetByID(_ context.Context, id uuid.UUID) (*model.GradingSystem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.systems[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &g, nil
}

func (f *fakeGradingStore) Create(_ context.Context, g *model.GradingSystem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	g.ID = uuid.New()
	g.Version = 1
	f.systems[g.ID] = *g
	return nil
}

func (f *fakeGradingStore) Replace(_ context.Context, g *model.GradingSystem, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.systems[g.ID]
	if !ok || cur.Version != expectedVersion {
		return pgx.ErrNoRows
	}
	f.writes++
	g.Version = cur.Version + 1
	f.systems[g.ID] = *g
	return nil
}

func (f *fakeGradingStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.systems[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.systems, id)
	return nil
}

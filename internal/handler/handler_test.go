package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/jadwal-backend/internal/middleware"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
	"github.com/stemsi/jadwal-backend/internal/service"
	"github.com/stemsi/jadwal-backend/internal/validator"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// envelope mirrors response.Response with raw data for assertions.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		Warnings []string `json:"warnings"`
	} `json:"metadata"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// withClaims stands in for RequireAdminJWT.
func withClaims(claims *service.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, claims)
		c.Next()
	}
}

// ─── in-memory timetable store ──────────────────────────────────────

type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.TimetableSession
}

func newMemStore() *memStore {
	return &memStore{sessions: map[uuid.UUID]model.TimetableSession{}}
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*model.TimetableSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (m *memStore) List(_ context.Context, f model.TimetableFilter) ([]model.TimetableSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TimetableSession
	for _, s := range m.sessions {
		if (f.ClassID == 0 || s.ClassID == f.ClassID) &&
			(f.TeacherID == 0 || s.TeacherID == f.TeacherID) &&
			(f.DayOfWeek == "" || s.DayOfWeek == f.DayOfWeek) &&
			(f.Status == "" || s.Status == f.Status) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *memStore) ListForConflictCheck(_ context.Context, day model.DayOfWeek, classID, teacherID int) ([]model.TimetableSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sameDay(day, classID, teacherID), nil
}

func (m *memStore) ListPublishedByClass(ctx context.Context, classID int) ([]model.TimetableSession, error) {
	all, _ := m.List(ctx, model.TimetableFilter{ClassID: classID})
	var out []model.TimetableSession
	for _, s := range all {
		if s.Status != model.SessionStatusDraft {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, s *model.TimetableSession, guard repository.SessionGuard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := guard(m.sameDay(s.DayOfWeek, s.ClassID, s.TeacherID)); err != nil {
		return err
	}
	s.ID = uuid.New()
	s.Version = 1
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) Update(_ context.Context, s *model.TimetableSession, expectedVersion int, guard repository.SessionGuard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := guard(m.sameDay(s.DayOfWeek, s.ClassID, s.TeacherID)); err != nil {
		return err
	}
	cur, ok := m.sessions[s.ID]
	if !ok || cur.Version != expectedVersion {
		return pgx.ErrNoRows
	}
	s.Version = cur.Version + 1
	s.Status = cur.Status
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, current *model.TimetableSession, status model.SessionStatus, expectedVersion int, guard repository.SessionGuard) (*model.TimetableSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if guard != nil {
		if err := guard(m.sameDay(current.DayOfWeek, current.ClassID, current.TeacherID)); err != nil {
			return nil, err
		}
	}
	cur, ok := m.sessions[current.ID]
	if !ok || cur.Version != expectedVersion {
		return nil, pgx.ErrNoRows
	}
	cur.Status = status
	cur.Version++
	m.sessions[cur.ID] = cur
	return &cur, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[id]
	if !ok || cur.Status == model.SessionStatusLocked {
		return pgx.ErrNoRows
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStore) sameDay(day model.DayOfWeek, classID, teacherID int) []model.TimetableSession {
	var out []model.TimetableSession
	for _, s := range m.sessions {
		if s.DayOfWeek == day && (s.ClassID == classID || s.TeacherID == teacherID) {
			out = append(out, s)
		}
	}
	return out
}

type memSubjects map[int]string

func (m memSubjects) GetByID(_ context.Context, id int) (*model.Subject, error) {
	name, ok := m[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &model.Subject{ID: id, Name: name}, nil
}

type memClasses []model.Class

func (m memClasses) List(context.Context) ([]model.Class, error) { return m, nil }

type memHistory map[string][]model.AuditEntry

func (m memHistory) History(_ context.Context, entity, entityID string) ([]model.AuditEntry, error) {
	return m[entity+":"+entityID], nil
}

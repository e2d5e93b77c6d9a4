package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/export"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/schedule"
	"github.com/stemsi/jadwal-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timetableRouter(store *memStore, claims *service.Claims) *gin.Engine {
	svc := service.NewTimetableService(store, memSubjects{10: "Matematika", 11: "Fisika"}, nil, nil, zerolog.Nop())
	h := NewTimetableHandler(svc,
		memClasses{{ID: 1, GradeLevel: "XI", MajorCode: "RPL", GroupNumber: 2}},
		memHistory{},
	)

	r := gin.New()
	r.GET("/public/classes/:id/timetable", h.PublicClassTimetable)
	admin := r.Group("/admin", withClaims(claims))
	admin.GET("/timetable", h.List)
	admin.GET("/timetable/mine", h.Mine)
	admin.GET("/timetable/export", h.Export)
	admin.POST("/timetable/check", h.Check)
	admin.GET("/timetable/:id", h.Get)
	admin.POST("/timetable", h.Create)
	admin.PUT("/timetable/:id", h.Update)
	admin.POST("/timetable/:id/status", h.ChangeStatus)
	admin.DELETE("/timetable/:id", h.Delete)
	admin.GET("/timetable/:id/history", h.History)
	return r
}

func sessionBody(classID, teacherID int, day, start, end string) gin.H {
	return gin.H{
		"class_id":    classID,
		"teacher_id":  teacherID,
		"subject_id":  10,
		"day_of_week": day,
		"start_time":  start,
		"end_time":    end,
	}
}

func createSession(t *testing.T, r *gin.Engine, body gin.H) model.TimetableSession {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/admin/timetable", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		Session model.TimetableSession `json:"session"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	return data.Session
}

func TestTimetableHandler_CreateAndConflict(t *testing.T) {
	r := timetableRouter(newMemStore(), &service.Claims{UserID: 1})

	first := createSession(t, r, sessionBody(1, 5, "MONDAY", "09:00", "10:00"))
	assert.Equal(t, model.SessionStatusDraft, first.Status)
	assert.Equal(t, "09:00", first.StartTime.String())

	w := doJSON(r, http.MethodPost, "/admin/timetable", sessionBody(2, 5, "MONDAY", "09:30", "10:30"))
	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.Equal(t, "SCHEDULE_CONFLICT", env.Error.Code)

	var data struct {
		Conflicts []schedule.Conflict `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Conflicts, 1)
	assert.Equal(t, schedule.ConflictTeacherDoubleBooked, data.Conflicts[0].Kind)
	assert.Equal(t, first.ID, data.Conflicts[0].SessionID)

	// Back-to-back is fine.
	createSession(t, r, sessionBody(2, 5, "MONDAY", "10:00", "11:00"))
}

func TestTimetableHandler_InputErrors(t *testing.T) {
	r := timetableRouter(newMemStore(), &service.Claims{UserID: 1})

	w := doJSON(r, http.MethodPost, "/admin/timetable", sessionBody(1, 5, "MONDAY", "10:00", "10:00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TIME_RANGE", decode(t, w).Error.Code)

	w = doJSON(r, http.MethodPost, "/admin/timetable", sessionBody(1, 5, "FUNDAY", "25:00", "10:00"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "day_of_week")
	assert.Contains(t, env.Error.Fields, "start_time")

	body := sessionBody(1, 5, "MONDAY", "07:00", "08:00")
	body["subject_id"] = 99
	w = doJSON(r, http.MethodPost, "/admin/timetable", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_REFERENCE", decode(t, w).Error.Code)

	w = doJSON(r, http.MethodGet, "/admin/timetable/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)

	w = doJSON(r, http.MethodGet, "/admin/timetable?day=someday&class_id=x", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env = decode(t, w)
	assert.Contains(t, env.Error.Fields, "day")
	assert.Contains(t, env.Error.Fields, "class_id")
}

func TestTimetableHandler_UpdateStatusDelete(t *testing.T) {
	r := timetableRouter(newMemStore(), &service.Claims{UserID: 1})
	s := createSession(t, r, sessionBody(1, 5, "TUESDAY", "07:00", "08:00"))
	path := "/admin/timetable/" + s.ID.String()

	body := sessionBody(1, 5, "TUESDAY", "08:00", "09:00")
	body["version"] = 1
	w := doJSON(r, http.MethodPut, path, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPut, path, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STALE_VERSION", decode(t, w).Error.Code)

	w = doJSON(r, http.MethodPost, path+"/status", gin.H{"status": "locked", "version": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", decode(t, w).Error.Code)

	w = doJSON(r, http.MethodPost, path+"/status", gin.H{"status": "published", "version": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPost, path+"/status", gin.H{"status": "locked", "version": 3})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SESSION_LOCKED", decode(t, w).Error.Code)

	// Published view sees the locked session.
	w = doJSON(r, http.MethodGet, "/public/classes/1/timetable", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pub struct {
		Sessions []model.TimetableSession `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &pub))
	require.Len(t, pub.Sessions, 1)
	assert.Equal(t, model.SessionStatusLocked, pub.Sessions[0].Status)
}

func TestTimetableHandler_Check(t *testing.T) {
	r := timetableRouter(newMemStore(), &service.Claims{UserID: 1})
	s := createSession(t, r, sessionBody(1, 5, "WEDNESDAY", "07:00", "08:00"))

	var data struct {
		OK        bool                `json:"ok"`
		Conflicts []schedule.Conflict `json:"conflicts"`
	}

	w := doJSON(r, http.MethodPost, "/admin/timetable/check", sessionBody(1, 6, "WEDNESDAY", "07:30", "08:30"))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.False(t, data.OK)
	require.Len(t, data.Conflicts, 1)
	assert.Equal(t, schedule.ConflictClassSlotTaken, data.Conflicts[0].Kind)

	body := sessionBody(1, 5, "WEDNESDAY", "07:15", "07:45")
	body["exclude_id"] = s.ID
	w = doJSON(r, http.MethodPost, "/admin/timetable/check", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.True(t, data.OK)
	assert.Empty(t, data.Conflicts)
}

func TestTimetableHandler_Mine(t *testing.T) {
	store := newMemStore()
	teacherID := 5
	r := timetableRouter(store, &service.Claims{UserID: 1, TeacherID: &teacherID})
	createSession(t, r, sessionBody(1, 5, "MONDAY", "07:00", "08:00"))
	createSession(t, r, sessionBody(1, 6, "MONDAY", "08:00", "09:00"))

	w := doJSON(r, http.MethodGet, "/admin/timetable/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Sessions []model.TimetableSession `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Len(t, data.Sessions, 1)
	assert.Equal(t, 5, data.Sessions[0].TeacherID)

	r = timetableRouter(store, &service.Claims{UserID: 2})
	w = doJSON(r, http.MethodGet, "/admin/timetable/mine", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_A_TEACHER", decode(t, w).Error.Code)
}

func TestTimetableHandler_Export(t *testing.T) {
	r := timetableRouter(newMemStore(), &service.Claims{UserID: 1})
	createSession(t, r, sessionBody(1, 5, "MONDAY", "07:00", "08:00"))

	req := httptest.NewRequest(http.MethodGet, "/admin/timetable/export?class_id=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "jadwal-kelas-1.xlsx")
	// xlsx files are zip archives.
	assert.Equal(t, "PK", w.Body.String()[:2])
}

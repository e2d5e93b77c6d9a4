package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/jadwal-backend/internal/export"
	"github.com/stemsi/jadwal-backend/internal/middleware"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/response"
	"github.com/stemsi/jadwal-backend/internal/schedule"
	"github.com/stemsi/jadwal-backend/internal/service"
	"github.com/stemsi/jadwal-backend/internal/validator"
)

// ClassDirectory lists classes for display names. Implemented by service.ClassService.
type ClassDirectory interface {
	List(ctx context.Context) ([]model.Class, error)
}

// HistoryReader returns the audit trail of a record. Implemented by service.AuditService.
type HistoryReader interface {
	History(ctx context.Context, entity, entityID string) ([]model.AuditEntry, error)
}

// TimetableHandler serves the timetable editor and the published views.
type TimetableHandler struct {
	timetable *service.TimetableService
	classes   ClassDirectory
	history   HistoryReader
}

// NewTimetableHandler creates a new TimetableHandler.
func NewTimetableHandler(timetable *service.TimetableService, classes ClassDirectory, history HistoryReader) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, classes: classes, history: history}
}

// List godoc
// GET /api/v1/admin/timetable?class_id=&teacher_id=&day=&status=
func (h *TimetableHandler) List(c *gin.Context) {
	filter, ok := parseTimetableFilter(c)
	if !ok {
		return
	}

	sessions, err := h.timetable.List(c.Request.Context(), filter)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": nonNilSessions(sessions)})
}

// Get godoc
// GET /api/v1/admin/timetable/:id
func (h *TimetableHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	session, err := h.timetable.GetByID(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Mine godoc
// GET /api/v1/admin/timetable/mine
// Returns the sessions taught by the teacher linked to the signed-in account.
func (h *TimetableHandler) Mine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessions, err := h.timetable.ForTeacher(c.Request.Context(), claims.TeacherID)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": nonNilSessions(sessions)})
}

// Create godoc
// POST /api/v1/admin/timetable
// Saves a draft session. Collisions answer 409 SCHEDULE_CONFLICT with the
// conflicting sessions in data.conflicts.
func (h *TimetableHandler) Create(c *gin.Context) {
	var req model.TimetableSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.timetable.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// Update godoc
// PUT /api/v1/admin/timetable/:id
func (h *TimetableHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateTimetableSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.timetable.Update(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// ChangeStatus godoc
// POST /api/v1/admin/timetable/:id/status
func (h *TimetableHandler) ChangeStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.ChangeSessionStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.timetable.ChangeStatus(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Delete godoc
// DELETE /api/v1/admin/timetable/:id
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.timetable.Delete(c.Request.Context(), actorID(c), id); err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "session deleted successfully"})
}

// Check godoc
// POST /api/v1/admin/timetable/check
// Dry-run conflict detection. Always 200 when the input is valid;
// data.ok is false when conflicts were found.
func (h *TimetableHandler) Check(c *gin.Context) {
	var req model.CheckConflictsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	conflicts, err := h.timetable.CheckConflicts(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []schedule.Conflict{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"ok":        len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

// History godoc
// GET /api/v1/admin/timetable/:id/history
func (h *TimetableHandler) History(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.history.History(c.Request.Context(), model.EntityTimetableSession, id.String())
	if err != nil {
		failService(c, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}

	response.Success(c, http.StatusOK, gin.H{"history": entries})
}

// Export godoc
// GET /api/v1/admin/timetable/export?class_id=|teacher_id=
// Streams the matching sessions as an xlsx workbook.
func (h *TimetableHandler) Export(c *gin.Context) {
	filter, ok := parseTimetableFilter(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	sessions, err := h.timetable.List(ctx, filter)
	if err != nil {
		failService(c, err)
		return
	}

	names := map[int]string{}
	if h.classes != nil {
		classes, err := h.classes.List(ctx)
		if err != nil {
			failService(c, err)
			return
		}
		for _, cl := range classes {
			names[cl.ID] = cl.Name()
		}
	}

	filename := "jadwal.xlsx"
	switch {
	case filter.ClassID > 0:
		filename = fmt.Sprintf("jadwal-kelas-%d.xlsx", filter.ClassID)
	case filter.TeacherID > 0:
		filename = fmt.Sprintf("jadwal-guru-%d.xlsx", filter.TeacherID)
	}

	c.Header("Content-Type", export.ContentTypeXLSX)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	if err := export.WriteTimetable(c.Writer, sessions, names); err != nil {
		_ = c.Error(err)
	}
}

// PublicClassTimetable godoc
// GET /api/v1/public/classes/:id/timetable
// Published and locked sessions only, served from the Redis cache.
func (h *TimetableHandler) PublicClassTimetable(c *gin.Context) {
	classID, ok := intParam(c, "id")
	if !ok {
		return
	}

	sessions, err := h.timetable.PublishedForClass(c.Request.Context(), classID)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"class_id": classID,
		"sessions": nonNilSessions(sessions),
	})
}

// parseTimetableFilter reads the optional list filters, answering 400 for
// malformed values.
func parseTimetableFilter(c *gin.Context) (model.TimetableFilter, bool) {
	var f model.TimetableFilter
	fields := map[string]string{}

	if v := c.Query("class_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["class_id"] = "class_id harus berupa angka positif"
		}
		f.ClassID = n
	}
	if v := c.Query("teacher_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["teacher_id"] = "teacher_id harus berupa angka positif"
		}
		f.TeacherID = n
	}
	if v := c.Query("day"); v != "" {
		f.DayOfWeek = model.DayOfWeek(strings.ToUpper(v))
		if !f.DayOfWeek.Valid() {
			fields["day"] = "day harus salah satu dari MONDAY sampai SUNDAY"
		}
	}
	if v := c.Query("status"); v != "" {
		f.Status = model.SessionStatus(strings.ToLower(v))
		switch f.Status {
		case model.SessionStatusDraft, model.SessionStatusPublished, model.SessionStatusLocked:
		default:
			fields["status"] = "status harus salah satu dari draft, published, locked"
		}
	}

	if len(fields) > 0 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return f, false
	}
	return f, true
}

func nonNilSessions(s []model.TimetableSession) []model.TimetableSession {
	if s == nil {
		return []model.TimetableSession{}
	}
	return s
}

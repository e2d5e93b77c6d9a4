package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/jadwal-backend/internal/grading"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/response"
	"github.com/stemsi/jadwal-backend/internal/service"
	"github.com/stemsi/jadwal-backend/internal/validator"
)

// GradingHandler serves grading systems and their grade bands.
type GradingHandler struct {
	grading *service.GradingService
	history HistoryReader
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(grading *service.GradingService, history HistoryReader) *GradingHandler {
	return &GradingHandler{grading: grading, history: history}
}

// List godoc
// GET /api/v1/admin/grading-systems
func (h *GradingHandler) List(c *gin.Context) {
	systems, err := h.grading.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	if systems == nil {
		systems = []model.GradingSystem{}
	}
	response.Success(c, http.StatusOK, gin.H{"grading_systems": systems})
}

// Get godoc
// GET /api/v1/admin/grading-systems/:id
func (h *GradingHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	g, err := h.grading.GetByID(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"grading_system": g,
		"gaps":           nonNilRanges(grading.Gaps(g.Bands)),
	})
}

// Create godoc
// POST /api/v1/admin/grading-systems
// Overlapping bands answer 422 GRADE_BANDS_OVERLAP and nothing is stored.
// Uncovered ranges are reported as warnings in metadata.
func (h *GradingHandler) Create(c *gin.Context) {
	var req model.CreateGradingSystemRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	g, gaps, err := h.grading.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		failService(c, err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusCreated, gin.H{
		"grading_system": g,
		"gaps":           nonNilRanges(gaps),
	}, gapWarnings(gaps))
}

// Update godoc
// PUT /api/v1/admin/grading-systems/:id
// Replaces the name and the whole band set atomically.
func (h *GradingHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateGradingSystemRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	g, gaps, err := h.grading.Update(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		failService(c, err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, gin.H{
		"grading_system": g,
		"gaps":           nonNilRanges(gaps),
	}, gapWarnings(gaps))
}

// Delete godoc
// DELETE /api/v1/admin/grading-systems/:id
func (h *GradingHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.grading.Delete(c.Request.Context(), actorID(c), id); err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "grading system deleted successfully"})
}

// Validate godoc
// POST /api/v1/admin/grading-systems/validate
// Dry-run of the band checks used by create and update.
func (h *GradingHandler) Validate(c *gin.Context) {
	var req model.ValidateBandsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	gaps, err := h.grading.Validate(model.BandsFromInput(req.Bands))
	if err != nil {
		failService(c, err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, gin.H{
		"ok":   true,
		"gaps": nonNilRanges(gaps),
	}, gapWarnings(gaps))
}

// Classify godoc
// POST /api/v1/admin/grading-systems/:id/classify
func (h *GradingHandler) Classify(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.ClassifyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	results, err := h.grading.Classify(c.Request.Context(), id, req.Percentages)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// History godoc
// GET /api/v1/admin/grading-systems/:id/history
func (h *GradingHandler) History(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.history.History(c.Request.Context(), model.EntityGradingSystem, id.String())
	if err != nil {
		failService(c, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}

	response.Success(c, http.StatusOK, gin.H{"history": entries})
}

func gapWarnings(gaps []grading.Range) []string {
	if len(gaps) == 0 {
		return nil
	}
	out := make([]string, len(gaps))
	for i, g := range gaps {
		out[i] = fmt.Sprintf("Rentang %s tidak tercakup oleh nilai mana pun.", g.String())
	}
	return out
}

func nonNilRanges(r []grading.Range) []grading.Range {
	if r == nil {
		return []grading.Range{}
	}
	return r
}

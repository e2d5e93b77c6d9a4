package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/jadwal-backend/internal/grading"
	"github.com/stemsi/jadwal-backend/internal/middleware"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/response"
	"github.com/stemsi/jadwal-backend/internal/schedule"
	"github.com/stemsi/jadwal-backend/internal/service"
)

// failService maps a service error onto the response envelope. Anything it
// does not recognise is recorded on the context and reported as a 500.
func failService(c *gin.Context, err error) {
	var conflictErr *service.ConflictError
	var bandErr *grading.BandError

	switch {
	case errors.As(err, &conflictErr):
		response.FailWithData(c, http.StatusConflict, response.ErrScheduleConflict, gin.H{
			"conflicts": conflictErr.Conflicts,
		})
	case errors.As(err, &bandErr):
		response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrGradeBandsOverlap, gin.H{
			"lower":   bandErr.Lower,
			"upper":   bandErr.Upper,
			"message": bandErr.Error(),
		})
	case errors.Is(err, grading.ErrInvalidBand):
		response.FailWithDetail(c, http.StatusUnprocessableEntity, response.ErrInvalidGradeBand, err.Error())

	case errors.Is(err, schedule.ErrEmptyRange), errors.Is(err, schedule.ErrOutOfDay):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidTimeRange)
	case errors.Is(err, schedule.ErrInvalidDay),
		errors.Is(err, schedule.ErrMissingParty),
		errors.Is(err, model.ErrInvalidTimeOfDay):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	case errors.Is(err, schedule.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
	case errors.Is(err, service.ErrSessionLocked):
		response.Fail(c, http.StatusConflict, response.ErrSessionLocked)

	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrStaleVersion):
		response.Fail(c, http.StatusConflict, response.ErrStaleVersion)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailExists)
	case errors.Is(err, service.ErrDuplicate):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrInvalidReference):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidReference)
	case errors.Is(err, service.ErrInUse):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	case errors.Is(err, service.ErrProtected), errors.Is(err, service.ErrDeleteSelf):
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
	case errors.Is(err, service.ErrNotATeacher):
		response.Fail(c, http.StatusForbidden, response.ErrNotATeacher)

	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// intParam parses a positive integer path parameter, answering 400 on failure.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// uuidParam parses a UUID path parameter, answering 400 on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// actorID is the admin making the request, or 0 if unauthenticated.
func actorID(c *gin.Context) int {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

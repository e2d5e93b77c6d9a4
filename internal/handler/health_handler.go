package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// HealthChecker pings the backing stores. Implemented by database.Checker.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthHandler reports liveness plus a few runtime figures.
type HealthHandler struct {
	checker   HealthChecker
	startTime time.Time
	log       zerolog.Logger
}

func NewHealthHandler(checker HealthChecker, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checker:   checker,
		startTime: time.Now(),
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

// Health godoc
// GET /health
// 200 when PostgreSQL and Redis answer, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if h.checker != nil {
		if err := h.checker.Check(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Health check failed")
			response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
			return
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response.Success(c, http.StatusOK, gin.H{
		"status":         "ok",
		"uptime":         time.Since(h.startTime).Round(time.Second).String(),
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc":     mem.HeapAlloc,
		"go_version":     runtime.Version(),
		"num_gc":         mem.NumGC,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

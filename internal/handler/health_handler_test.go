package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct{ err error }

func (f fakeChecker) Check(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthHandler(fakeChecker{}, zerolog.Nop()).Health)

	w := doJSON(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Status     string `json:"status"`
		Goroutines int    `json:"goroutines"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "ok", data.Status)
	assert.Positive(t, data.Goroutines)
}

func TestHealth_DependencyDown(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthHandler(fakeChecker{err: errors.New("redis: connection refused")}, zerolog.Nop()).Health)

	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decode(t, w).Error.Code)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.sch.id", "http://localhost:5173"},
		parseOrigins(" https://a.sch.id , ,http://localhost:5173"))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TIMETABLE_CACHE_TTL_MINUTES", "5")
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.TimetableCacheTTL)
	assert.Equal(t, 30, cfg.AuthRateLimit)
	assert.Equal(t, "@daily", cfg.CacheWarmSchedule)
	assert.Equal(t, 180*24*time.Hour, cfg.AuditRetention)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "timetable:class:7:published", CacheKey.ClassPublishedTimetableKey(7))
	assert.Equal(t, "timetable:class:7:generation", CacheKey.ClassTimetableGenerationKey(7))
	assert.Equal(t, "timetable:class:7:changes", CacheKey.ClassTimetableChannel(7))
}

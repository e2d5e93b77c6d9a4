package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/config"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// setIfGeneration stores KEYS[1] only while the generation counter in KEYS[2]
// still holds ARGV[1]. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// TimetableCache keeps the published timetable of each class in Redis.
// Each class has a generation counter that Invalidate bumps; fills carry the
// generation read before the rows were loaded and are dropped when it moved.
type TimetableCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewTimetableCache creates a new TimetableCache.
func NewTimetableCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *TimetableCache {
	return &TimetableCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "timetable_cache").Logger(),
	}
}

// GetPublished returns the cached sessions for a class. The boolean is false on a miss.
func (c *TimetableCache) GetPublished(ctx context.Context, classID int) ([]model.TimetableSession, bool, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.ClassPublishedTimetableKey(classID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get published timetable: %w", err)
	}

	var sessions []model.TimetableSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.log.Warn().Err(err).Int("class_id", classID).Msg("Discarding unreadable cache entry")
		_ = c.rdb.Del(ctx, config.CacheKey.ClassPublishedTimetableKey(classID)).Err()
		return nil, false, nil
	}
	return sessions, true, nil
}

// Generation returns the invalidation counter of a class, 0 when never invalidated.
func (c *TimetableCache) Generation(ctx context.Context, classID int) (int64, error) {
	gen, err := c.rdb.Get(ctx, config.CacheKey.ClassTimetableGenerationKey(classID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get timetable generation: %w", err)
	}
	return gen, nil
}

// SetPublished stores the published sessions of a class with the configured
// TTL if the class generation still equals generation. It reports whether the
// entry was written.
func (c *TimetableCache) SetPublished(ctx context.Context, classID int, generation int64, sessions []model.TimetableSession) (bool, error) {
	if sessions == nil {
		sessions = []model.TimetableSession{}
	}
	raw, err := json.Marshal(sessions)
	if err != nil {
		return false, fmt.Errorf("marshal published timetable: %w", err)
	}

	keys := []string{
		config.CacheKey.ClassPublishedTimetableKey(classID),
		config.CacheKey.ClassTimetableGenerationKey(classID),
	}
	stored, err := setIfGeneration.Run(ctx, c.rdb, keys,
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("set published timetable: %w", err)
	}
	return stored == 1, nil
}

// Invalidate bumps the generation and drops the cached timetable of every
// given class in one transaction.
func (c *TimetableCache) Invalidate(ctx context.Context, classIDs ...int) error {
	if len(classIDs) == 0 {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range uniqueInts(classIDs) {
			pipe.Incr(ctx, config.CacheKey.ClassTimetableGenerationKey(id))
			pipe.Del(ctx, config.CacheKey.ClassPublishedTimetableKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate published timetable: %w", err)
	}
	return nil
}

func uniqueInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/config"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// ChangeFeed fans committed mutations out to Redis Pub/Sub subscribers and
// queues them for the audit worker, in one pipelined round trip.
type ChangeFeed struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewChangeFeed creates a new ChangeFeed.
func NewChangeFeed(rdb *redis.Client, log zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{
		rdb: rdb,
		log: log.With().Str("component", "change_feed").Logger(),
	}
}

// Publish broadcasts ev on its channels and pushes it onto the audit queue.
func (f *ChangeFeed) Publish(ctx context.Context, ev model.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	pipe := f.rdb.Pipeline()
	for _, ch := range Channels(ev) {
		pipe.Publish(ctx, ch, payload)
	}
	pipe.RPush(ctx, config.WorkerKey.PersistAuditQueue, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	f.log.Debug().
		Str("entity", ev.Entity).
		Str("entity_id", ev.EntityID).
		Str("action", string(ev.Action)).
		Msg("Change event published")
	return nil
}

// Subscribe opens a Pub/Sub subscription on the timetable channel of a class.
// The caller must Close the returned subscription.
func (f *ChangeFeed) Subscribe(ctx context.Context, classID int) *redis.PubSub {
	return f.rdb.Subscribe(ctx, config.CacheKey.ClassTimetableChannel(classID))
}

// Channels lists the Pub/Sub channels an event is broadcast on.
func Channels(ev model.ChangeEvent) []string {
	if ev.Entity == model.EntityGradingSystem {
		return []string{config.CacheKey.GradingChannel()}
	}
	ids := uniqueInts(ev.ClassIDs)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, config.CacheKey.ClassTimetableChannel(id))
	}
	return out
}

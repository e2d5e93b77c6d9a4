package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/config"
	"github.com/stemsi/jadwal-backend/internal/model"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
	// AuditMaxAttempts is how often an entry is requeued before it is dropped.
	AuditMaxAttempts = 5
)

// AuditWriter persists audit entries. Implemented by repository.AuditRepository.
type AuditWriter interface {
	InsertBatch(ctx context.Context, entries []model.AuditEntry) error
	Insert(ctx context.Context, e model.AuditEntry) error
}

// AuditWorker drains the change events queued by broker.ChangeFeed into the
// timetable_audit_log table.
type AuditWorker struct {
	store   AuditWriter
	rdb     *redis.Client
	log     zerolog.Logger
	requeue func(ctx context.Context, raw []byte) error
}

func NewAuditWorker(store AuditWriter, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	w := &AuditWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "audit_worker").Logger(),
	}
	w.requeue = func(ctx context.Context, raw []byte) error {
		return w.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, raw).Err()
	}
	return w
}

// auditPayload is a queued ChangeEvent plus how often it has been requeued.
type auditPayload struct {
	model.ChangeEvent
	Attempts int `json:"attempts,omitempty"`
}

func (p *auditPayload) entry() model.AuditEntry {
	at := p.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return model.AuditEntry{
		Entity:     p.Entity,
		EntityID:   p.EntityID,
		Action:     p.Action,
		ActorID:    p.ActorID,
		Version:    p.Version,
		Snapshot:   p.Snapshot,
		OccurredAt: at,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]*auditPayload, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.PersistAuditQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			p, err := decodeAuditPayload(item[1])
			if err != nil {
				w.log.Error().Err(err).Str("payload", item[1]).Msg("Invalid audit payload, dropping")
				continue
			}

			batch = append(batch, p)
		}
	}
}

func decodeAuditPayload(raw string) (*auditPayload, error) {
	var p auditPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *AuditWorker) flushSafe(ctx context.Context, batch []*auditPayload) {
	if len(batch) == 0 {
		return
	}

	entries := make([]model.AuditEntry, len(batch))
	for i, p := range batch {
		entries[i] = p.entry()
	}

	err := w.store.InsertBatch(ctx, entries)
	if err == nil {
		w.log.Debug().Int("count", len(entries)).Msg("Audit batch persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(entries)).Msg("bulk audit insert failed, using fallback")

	for i, p := range batch {
		err := w.store.Insert(ctx, entries[i])
		if err == nil {
			continue
		}
		if p.Attempts+1 >= AuditMaxAttempts {
			w.log.Error().Err(err).
				Str("entity", p.Entity).
				Str("entity_id", p.EntityID).
				Msg("Audit entry dropped after repeated failures")
			continue
		}
		w.log.Error().Err(err).Str("entity_id", p.EntityID).Msg("single audit insert failed, requeueing")

		p.Attempts++
		raw, _ := json.Marshal(p)
		if err := w.requeue(ctx, raw); err != nil {
			w.log.Error().Err(err).Str("entity_id", p.EntityID).Msg("Audit requeue failed")
		}
	}
}

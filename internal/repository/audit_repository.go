package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// AuditRepository reads and prunes the timetable_audit_log table.
// Rows are written by worker.AuditWorker.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// ListByEntity returns the most recent entries for one record, newest first.
func (r *AuditRepository) ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]model.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, entity, entity_id, action, COALESCE(actor_id, 0), version, snapshot, occurred_at
		 FROM timetable_audit_log
		 WHERE entity = $1 AND entity_id = $2
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $3`, entity, entityID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AuditEntry, error) {
		var e model.AuditEntry
		err := row.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &e.ActorID, &e.Version, &e.Snapshot, &e.OccurredAt)
		return e, err
	})
}

// DeleteOlderThan removes entries that occurred before cutoff and returns how many went.
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM timetable_audit_log WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertBatch writes entries in one statement using UNNEST.
func (r *AuditRepository) InsertBatch(ctx context.Context, entries []model.AuditEntry) error {
	n := len(entries)
	if n == 0 {
		return nil
	}

	entities := make([]string, n)
	entityIDs := make([]string, n)
	actions := make([]string, n)
	actors := make([]int, n)
	versions := make([]int, n)
	snapshots := make([]string, n)
	occurred := make([]time.Time, n)
	for i, e := range entries {
		entities[i] = e.Entity
		entityIDs[i] = e.EntityID
		actions[i] = string(e.Action)
		actors[i] = e.ActorID
		versions[i] = e.Version
		snapshots[i] = snapshotText(e.Snapshot)
		occurred[i] = e.OccurredAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO timetable_audit_log (entity, entity_id, action, actor_id, version, snapshot, occurred_at)
		SELECT u.entity, u.entity_id, u.action, NULLIF(u.actor_id, 0), u.version, u.snapshot::jsonb, u.occurred_at
		FROM UNNEST(
			$1::text[],
			$2::text[],
			$3::text[],
			$4::int[],
			$5::int[],
			$6::text[],
			$7::timestamptz[]
		) AS u (entity, entity_id, action, actor_id, version, snapshot, occurred_at)`,
		entities, entityIDs, actions, actors, versions, snapshots, occurred)
	return err
}

// Insert writes a single entry.
func (r *AuditRepository) Insert(ctx context.Context, e model.AuditEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO timetable_audit_log (entity, entity_id, action, actor_id, version, snapshot, occurred_at)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6::jsonb, $7)`,
		e.Entity, e.EntityID, string(e.Action), e.ActorID, e.Version, snapshotText(e.Snapshot), e.OccurredAt)
	return err
}

func snapshotText(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

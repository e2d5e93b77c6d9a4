package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardCounts holds the stat-card totals.
type DashboardCounts struct {
	Classes        int `json:"classes"`
	Teachers       int `json:"teachers"`
	Subjects       int `json:"subjects"`
	GradingSystems int `json:"grading_systems"`
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (DashboardCounts, error) {
	var c DashboardCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM classes),
			(SELECT COUNT(*) FROM teachers),
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM grading_systems)`,
	).Scan(&c.Classes, &c.Teachers, &c.Subjects, &c.GradingSystems)
	return c, err
}

// GetSessionStatusCounts retrieves the distribution of timetable sessions by status.
func (r *DashboardRepository) GetSessionStatusCounts(ctx context.Context) (map[model.SessionStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM timetable_sessions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.SessionStatus]int)
	for rows.Next() {
		var status model.SessionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DashboardTeacherLoad is a teacher's weekly teaching time across all sessions.
type DashboardTeacherLoad struct {
	TeacherID     int    `json:"teacher_id"`
	TeacherName   string `json:"teacher_name"`
	Sessions      int    `json:"sessions"`
	WeeklyMinutes int    `json:"weekly_minutes"`
}

// GetTeacherLoads returns the limit teachers with the most weekly minutes.
func (r *DashboardRepository) GetTeacherLoads(ctx context.Context, limit int) ([]DashboardTeacherLoad, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name, COUNT(s.id),
		        COALESCE(SUM(EXTRACT(EPOCH FROM (s.end_time - s.start_time)) / 60), 0)::int AS minutes
		 FROM teachers t
		 JOIN timetable_sessions s ON s.teacher_id = t.id
		 GROUP BY t.id, t.name
		 ORDER BY minutes DESC, t.name
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DashboardTeacherLoad, error) {
		var l DashboardTeacherLoad
		err := row.Scan(&l.TeacherID, &l.TeacherName, &l.Sessions, &l.WeeklyMinutes)
		return l, err
	})
}

// DashboardRecentChange is an audit entry without its snapshot.
type DashboardRecentChange struct {
	Entity     string             `json:"entity"`
	EntityID   string             `json:"entity_id"`
	Action     model.ChangeAction `json:"action"`
	ActorID    int                `json:"actor_id"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// GetRecentChanges retrieves the last N audited mutations.
func (r *DashboardRepository) GetRecentChanges(ctx context.Context, limit int) ([]DashboardRecentChange, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT entity, entity_id, action, COALESCE(actor_id, 0), occurred_at
		 FROM timetable_audit_log
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DashboardRecentChange, error) {
		var c DashboardRecentChange
		err := row.Scan(&c.Entity, &c.EntityID, &c.Action, &c.ActorID, &c.OccurredAt)
		return c, err
	})
}

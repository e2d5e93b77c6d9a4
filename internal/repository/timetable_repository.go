package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// SessionGuard inspects the sessions that share a day with a pending write
// and returns a non-nil error to abort it. It runs inside the write's
// transaction, so the snapshot it sees cannot change before commit.
type SessionGuard func(existing []model.TimetableSession) error

// TimetableRepository handles timetable session data access.
type TimetableRepository struct {
	pool *pgxpool.Pool
}

// NewTimetableRepository creates a new TimetableRepository.
func NewTimetableRepository(pool *pgxpool.Pool) *TimetableRepository {
	return &TimetableRepository{pool: pool}
}

const sessionSelect = `
	SELECT s.id, s.class_id, s.teacher_id, t.name, s.subject_id, sub.name,
	       s.day_of_week, s.start_time, s.end_time, s.room, s.status, s.version,
	       s.created_by, s.created_at, s.updated_at
	FROM timetable_sessions s
	JOIN teachers t ON t.id = s.teacher_id
	JOIN subjects sub ON sub.id = s.subject_id`

// dayOrder sorts MONDAY..SUNDAY in calendar order rather than alphabetically.
const dayOrder = `array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY','SUNDAY'], s.day_of_week)`

func scanSession(row pgx.Row, s *model.TimetableSession) error {
	return row.Scan(
		&s.ID, &s.ClassID, &s.TeacherID, &s.TeacherName, &s.SubjectID, &s.Subject,
		&s.DayOfWeek, &s.StartTime, &s.EndTime, &s.Room, &s.Status, &s.Version,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
}

func collectSessions(rows pgx.Rows) ([]model.TimetableSession, error) {
	defer rows.Close()

	sessions := []model.TimetableSession{}
	for rows.Next() {
		var s model.TimetableSession
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetByID retrieves one session.
func (r *TimetableRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TimetableSession, error) {
	s := &model.TimetableSession{}
	if err := scanSession(r.pool.QueryRow(ctx, sessionSelect+` WHERE s.id = $1`, id), s); err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves sessions matching the filter, ordered by day then start time.
func (r *TimetableRepository) List(ctx context.Context, f model.TimetableFilter) ([]model.TimetableSession, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ClassID > 0 {
		add("s.class_id = $%d", f.ClassID)
	}
	if f.TeacherID > 0 {
		add("s.teacher_id = $%d", f.TeacherID)
	}
	if f.DayOfWeek != "" {
		add("s.day_of_week = $%d", string(f.DayOfWeek))
	}
	if f.Status != "" {
		add("s.status = $%d", string(f.Status))
	}

	query := sessionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + dayOrder + ", s.start_time, s.class_id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListForConflictCheck returns every session on day that involves the class
// or the teacher, whatever its status.
func (r *TimetableRepository) ListForConflictCheck(ctx context.Context, day model.DayOfWeek, classID, teacherID int) ([]model.TimetableSession, error) {
	return listForConflictCheck(ctx, r.pool, day, classID, teacherID)
}

// ListPublishedByClass returns the published and locked sessions of a class.
func (r *TimetableRepository) ListPublishedByClass(ctx context.Context, classID int) ([]model.TimetableSession, error) {
	rows, err := r.pool.Query(ctx,
		sessionSelect+`
		WHERE s.class_id = $1 AND s.status IN ('published', 'locked')
		ORDER BY `+dayOrder+`, s.start_time`, classID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// Create runs guard against the day's sessions and inserts s, all under a
// per-day advisory lock. On success s carries its generated fields.
func (r *TimetableRepository) Create(ctx context.Context, s *model.TimetableSession, guard SessionGuard) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockAndGuard(ctx, tx, s.DayOfWeek, s.ClassID, s.TeacherID, guard); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO timetable_sessions
			   (class_id, teacher_id, subject_id, day_of_week, start_time, end_time, room, status, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id, version, created_at, updated_at`,
			s.ClassID, s.TeacherID, s.SubjectID, string(s.DayOfWeek), s.StartTime, s.EndTime,
			s.Room, string(s.Status), s.CreatedBy,
		).Scan(&s.ID, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		return fillNames(ctx, tx, s)
	})
}

// Update rewrites s in place if its stored version still equals
// expectedVersion. A version mismatch surfaces as pgx.ErrNoRows.
func (r *TimetableRepository) Update(ctx context.Context, s *model.TimetableSession, expectedVersion int, guard SessionGuard) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockAndGuard(ctx, tx, s.DayOfWeek, s.ClassID, s.TeacherID, guard); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx,
			`UPDATE timetable_sessions
			 SET class_id = $1, teacher_id = $2, subject_id = $3, day_of_week = $4,
			     start_time = $5, end_time = $6, room = $7,
			     version = version + 1, updated_at = NOW()
			 WHERE id = $8 AND version = $9
			 RETURNING version, status, created_by, created_at, updated_at`,
			s.ClassID, s.TeacherID, s.SubjectID, string(s.DayOfWeek), s.StartTime, s.EndTime, s.Room,
			s.ID, expectedVersion,
		).Scan(&s.Version, &s.Status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		return fillNames(ctx, tx, s)
	})
}

// UpdateStatus moves a session to status if its version still matches.
// guard may be nil when the move cannot introduce a conflict.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, current *model.TimetableSession, status model.SessionStatus, expectedVersion int, guard SessionGuard) (*model.TimetableSession, error) {
	updated := *current
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if guard != nil {
			if err := lockAndGuard(ctx, tx, current.DayOfWeek, current.ClassID, current.TeacherID, guard); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx,
			`UPDATE timetable_sessions
			 SET status = $1, version = version + 1, updated_at = NOW()
			 WHERE id = $2 AND version = $3
			 RETURNING status, version, updated_at`,
			string(status), current.ID, expectedVersion,
		).Scan(&updated.Status, &updated.Version, &updated.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a session unless it is locked. Returns pgx.ErrNoRows when
// nothing matched.
func (r *TimetableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM timetable_sessions WHERE id = $1 AND status <> 'locked'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listForConflictCheck(ctx context.Context, q querier, day model.DayOfWeek, classID, teacherID int) ([]model.TimetableSession, error) {
	rows, err := q.Query(ctx,
		sessionSelect+`
		WHERE s.day_of_week = $1 AND (s.class_id = $2 OR s.teacher_id = $3)
		ORDER BY s.start_time`,
		string(day), classID, teacherID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// lockAndGuard serialises writers touching the same day, then hands the
// day's relevant sessions to guard.
func lockAndGuard(ctx context.Context, tx pgx.Tx, day model.DayOfWeek, classID, teacherID int, guard SessionGuard) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('timetable:' || $1::text))`, string(day)); err != nil {
		return err
	}
	if guard == nil {
		return nil
	}
	existing, err := listForConflictCheck(ctx, tx, day, classID, teacherID)
	if err != nil {
		return err
	}
	return guard(existing)
}

func fillNames(ctx context.Context, tx pgx.Tx, s *model.TimetableSession) error {
	return tx.QueryRow(ctx,
		`SELECT t.name, sub.name
		 FROM teachers t, subjects sub
		 WHERE t.id = $1 AND sub.id = $2`,
		s.TeacherID, s.SubjectID,
	).Scan(&s.TeacherName, &s.Subject)
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

const classColumns = `id, grade_level, major_code, group_number, homeroom_teacher_id, created_at, updated_at`

func scanClass(row pgx.Row, c *model.Class) error {
	return row.Scan(&c.ID, &c.GradeLevel, &c.MajorCode, &c.GroupNumber, &c.HomeroomTeacherID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id int) (*model.Class, error) {
	c := &model.Class{}
	err := scanClass(r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id), c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves all classes.
func (r *ClassRepository) List(ctx context.Context) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+classColumns+` FROM classes ORDER BY grade_level, major_code, group_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		var c model.Class
		if err := scanClass(rows, &c); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// ListIDs returns the ids of every class.
func (r *ClassRepository) ListIDs(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM classes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (grade_level, major_code, group_number, homeroom_teacher_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.GradeLevel, c.MajorCode, c.GroupNumber, c.HomeroomTeacherID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing class. Returns pgx.ErrNoRows if it does not exist.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	return r.pool.QueryRow(ctx,
		`UPDATE classes
		 SET grade_level = $1, major_code = $2, group_number = $3, homeroom_teacher_id = $4,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		c.GradeLevel, c.MajorCode, c.GroupNumber, c.HomeroomTeacherID, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// Delete removes a class by its ID. Returns pgx.ErrNoRows if it does not exist.
func (r *ClassRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// TeacherRepository handles teacher data access.
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

const teacherColumns = `id, name, email, admin_id, created_at, updated_at`

func scanTeacher(row pgx.Row, t *model.Teacher) error {
	return row.Scan(&t.ID, &t.Name, &t.Email, &t.AdminID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a teacher by ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	t := &model.Teacher{}
	if err := scanTeacher(r.pool.QueryRow(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id), t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByAdminID retrieves the teacher linked to an admin account.
func (r *TeacherRepository) GetByAdminID(ctx context.Context, adminID int) (*model.Teacher, error) {
	t := &model.Teacher{}
	if err := scanTeacher(r.pool.QueryRow(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE admin_id = $1`, adminID), t); err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves all teachers ordered by name.
func (r *TeacherRepository) List(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teacherColumns+` FROM teachers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachers := []model.Teacher{}
	for rows.Next() {
		var t model.Teacher
		if err := scanTeacher(rows, &t); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, t *model.Teacher) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO teachers (name, email, admin_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.Email, t.AdminID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update modifies an existing teacher. Returns pgx.ErrNoRows if it does not exist.
func (r *TeacherRepository) Update(ctx context.Context, t *model.Teacher) error {
	return r.pool.QueryRow(ctx,
		`UPDATE teachers SET name = $1, email = $2, admin_id = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		t.Name, t.Email, t.AdminID, t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// Delete removes a teacher. Sessions referencing the teacher block deletion (23503).
func (r *TeacherRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

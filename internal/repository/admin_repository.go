package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// AdminRepository handles admin data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// adminSelect joins the role name and, when the account belongs to a teacher,
// the teacher id.
const adminSelect = `
	SELECT a.id, a.email, a.name, a.password_hash, a.role_id, r.name, t.id, a.created_at, a.updated_at
	FROM admins a
	JOIN roles r ON a.role_id = r.id
	LEFT JOIN teachers t ON t.admin_id = a.id`

func scanAdmin(row pgx.Row, a *model.Admin) error {
	return row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.RoleID, &a.RoleName, &a.TeacherID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	a := &model.Admin{}
	if err := scanAdmin(r.pool.QueryRow(ctx, adminSelect+` WHERE a.id = $1`, id), a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByEmail retrieves an admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	a := &model.Admin{}
	if err := scanAdmin(r.pool.QueryRow(ctx, adminSelect+` WHERE a.email = $1`, email), a); err != nil {
		return nil, err
	}
	return a, nil
}

// List retrieves a page of admins, optionally filtered by role, plus the total count.
func (r *AdminRepository) List(ctx context.Context, roleID, limit, offset int) ([]model.Admin, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admins WHERE ($1 = 0 OR role_id = $1)`, roleID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		adminSelect+`
		WHERE ($1 = 0 OR a.role_id = $1)
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3`,
		roleID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	admins := []model.Admin{}
	for rows.Next() {
		var a model.Admin
		if err := scanAdmin(rows, &a); err != nil {
			return nil, 0, err
		}
		admins = append(admins, a)
	}
	return admins, total, rows.Err()
}

// EmailTaken reports whether another admin already uses email.
func (r *AdminRepository) EmailTaken(ctx context.Context, email string, excludeID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1 AND id <> $2)`, email, excludeID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO admins (email, name, password_hash, role_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.PasswordHash, a.RoleID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Update modifies an admin. An empty PasswordHash keeps the stored one.
func (r *AdminRepository) Update(ctx context.Context, a *model.Admin) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admins
		 SET email = $1, name = $2, role_id = $3,
		     password_hash = COALESCE(NULLIF($4, ''), password_hash),
		     updated_at = NOW()
		 WHERE id = $5`,
		a.Email, a.Name, a.RoleID, a.PasswordHash, a.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an admin.
func (r *AdminRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

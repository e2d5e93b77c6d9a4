package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// GradingRepository handles grading systems and their grade bands.
type GradingRepository struct {
	pool *pgxpool.Pool
}

// NewGradingRepository creates a new GradingRepository.
func NewGradingRepository(pool *pgxpool.Pool) *GradingRepository {
	return &GradingRepository{pool: pool}
}

// List retrieves every grading system with its bands.
func (r *GradingRepository) List(ctx context.Context) ([]model.GradingSystem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, is_default, version, created_at, updated_at
		 FROM grading_systems
		 ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	systems := []model.GradingSystem{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var g model.GradingSystem
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.IsDefault, &g.Version, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.Bands = []model.GradeBand{}
		index[g.ID] = len(systems)
		systems = append(systems, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(systems) == 0 {
		return systems, nil
	}

	bandRows, err := r.pool.Query(ctx,
		`SELECT grading_system_id, id, label, min_percentage, max_percentage, grade_points, remarks
		 FROM grade_bands
		 ORDER BY min_percentage DESC`)
	if err != nil {
		return nil, err
	}
	defer bandRows.Close()

	for bandRows.Next() {
		var (
			systemID uuid.UUID
			b        model.GradeBand
		)
		if err := bandRows.Scan(&systemID, &b.ID, &b.Label, &b.MinPercentage, &b.MaxPercentage, &b.GradePoints, &b.Remarks); err != nil {
			return nil, err
		}
		if i, ok := index[systemID]; ok {
			systems[i].Bands = append(systems[i].Bands, b)
		}
	}
	return systems, bandRows.Err()
}

// GetByID retrieves a grading system with its bands in display order.
func (r *GradingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.GradingSystem, error) {
	g := &model.GradingSystem{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, is_default, version, created_at, updated_at
		 FROM grading_systems WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.IsDefault, &g.Version, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}

	g.Bands, err = listBands(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a grading system and all of its bands in one transaction.
func (r *GradingRepository) Create(ctx context.Context, g *model.GradingSystem) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if g.IsDefault {
			if _, err := tx.Exec(ctx, `UPDATE grading_systems SET is_default = FALSE WHERE is_default`); err != nil {
				return err
			}
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO grading_systems (name, description, is_default)
			 VALUES ($1, $2, $3)
			 RETURNING id, version, created_at, updated_at`,
			g.Name, g.Description, g.IsDefault,
		).Scan(&g.ID, &g.Version, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}
		return insertBands(ctx, tx, g)
	})
}

// Replace overwrites the name, flags and full band set of a grading system
// if its version still equals expectedVersion. Either everything is written
// or nothing is. A version mismatch surfaces as pgx.ErrNoRows.
func (r *GradingRepository) Replace(ctx context.Context, g *model.GradingSystem, expectedVersion int) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`UPDATE grading_systems
			 SET name = $1, description = $2, is_default = $3,
			     version = version + 1, updated_at = NOW()
			 WHERE id = $4 AND version = $5
			 RETURNING version, created_at, updated_at`,
			g.Name, g.Description, g.IsDefault, g.ID, expectedVersion,
		).Scan(&g.Version, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}
		if g.IsDefault {
			if _, err := tx.Exec(ctx,
				`UPDATE grading_systems SET is_default = FALSE WHERE is_default AND id <> $1`, g.ID,
			); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM grade_bands WHERE grading_system_id = $1`, g.ID); err != nil {
			return err
		}
		return insertBands(ctx, tx, g)
	})
}

// Delete removes a grading system; its bands cascade.
func (r *GradingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM grading_systems WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func listBands(ctx context.Context, q querier, systemID uuid.UUID) ([]model.GradeBand, error) {
	rows, err := q.Query(ctx,
		`SELECT id, label, min_percentage, max_percentage, grade_points, remarks
		 FROM grade_bands
		 WHERE grading_system_id = $1
		 ORDER BY min_percentage DESC`, systemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bands := []model.GradeBand{}
	for rows.Next() {
		var b model.GradeBand
		if err := rows.Scan(&b.ID, &b.Label, &b.MinPercentage, &b.MaxPercentage, &b.GradePoints, &b.Remarks); err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

// insertBands writes g.Bands with a single UNNEST insert and reloads them
// so the caller sees the generated ids.
func insertBands(ctx context.Context, tx pgx.Tx, g *model.GradingSystem) error {
	n := len(g.Bands)
	labels := make([]string, n)
	mins := make([]float64, n)
	maxes := make([]float64, n)
	points := make([]float64, n)
	remarks := make([]string, n)
	for i, b := range g.Bands {
		labels[i] = b.Label
		mins[i] = b.MinPercentage
		maxes[i] = b.MaxPercentage
		points[i] = b.GradePoints
		remarks[i] = b.Remarks
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO grade_bands (grading_system_id, label, min_percentage, max_percentage, grade_points, remarks)
		 SELECT $1, u.label, u.min_pct, u.max_pct, u.points, u.remarks
		 FROM UNNEST($2::text[], $3::numeric[], $4::numeric[], $5::numeric[], $6::text[])
		      AS u (label, min_pct, max_pct, points, remarks)`,
		g.ID, labels, mins, maxes, points, remarks,
	); err != nil {
		return err
	}

	bands, err := listBands(ctx, tx, g.ID)
	if err != nil {
		return err
	}
	g.Bands = bands
	return nil
}

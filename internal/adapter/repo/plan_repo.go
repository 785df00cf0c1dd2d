package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stratplan/internal/domain"
)

// PlanRepositoryPG implements domain.PlanRepository backed by PostgreSQL.
type PlanRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepositoryPG.
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepositoryPG {
	return &PlanRepositoryPG{pool: pool}
}

// GetByID fetches a plan tier by id.
func (r *PlanRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, max_projects, max_actions, max_details FROM plans WHERE id = $1`, id)
	return scanPlan(row)
}

// GetForUser fetches the plan tier referenced by the user.
func (r *PlanRepositoryPG) GetForUser(ctx context.Context, userID string) (*domain.Plan, error) {
	row := r.pool.QueryRow(ctx, `
SELECT p.id, p.name, p.max_projects, p.max_actions, p.max_details
FROM plans p
JOIN users u ON u.plan_id = p.id
WHERE u.id = $1`, userID)
	return scanPlan(row)
}

// List returns the catalog ordered by project ceiling, unlimited tiers last.
func (r *PlanRepositoryPG) List(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, max_projects, max_actions, max_details
FROM plans
ORDER BY CASE WHEN max_projects = -1 THEN 2147483647 ELSE max_projects END`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.MaxProjects, &p.MaxActions, &p.MaxDetails); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Seed upserts the catalog rows by stable id. Re-running leaves exactly the
// canonical rows in place.
func (r *PlanRepositoryPG) Seed(ctx context.Context, tiers []domain.Plan) error {
	for _, tier := range tiers {
		_, err := r.pool.Exec(ctx, `
INSERT INTO plans (id, name, max_projects, max_actions, max_details)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    max_projects = EXCLUDED.max_projects,
    max_actions = EXCLUDED.max_actions,
    max_details = EXCLUDED.max_details`,
			tier.ID, tier.Name, tier.MaxProjects, tier.MaxActions, tier.MaxDetails)
		if err != nil {
			return fmt.Errorf("seed plan %s: %w", tier.Name, err)
		}
	}
	return nil
}

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var p domain.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.MaxProjects, &p.MaxActions, &p.MaxDetails); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

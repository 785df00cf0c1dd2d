package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stratplan/internal/domain"
)

// ProjectRepositoryPG implements domain.ProjectRepository backed by PostgreSQL.
type ProjectRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepositoryPG.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{pool: pool}
}

const projectPlanColumns = `id, title, description, sector, sector_details, marketing_maturity, marketing_goal, commercial_maturity, commercial_goal, user_id, created_at, updated_at`

// CreateProjectPlan inserts the plan row.
func (r *ProjectRepositoryPG) CreateProjectPlan(ctx context.Context, plan *domain.ProjectPlan) error {
	details, err := json.Marshal(plan.SectorDetails)
	if err != nil {
		return fmt.Errorf("encode sector details: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO project_plans (id, title, description, sector, sector_details, marketing_maturity, marketing_goal, commercial_maturity, commercial_goal, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING created_at, updated_at`,
		plan.ID, plan.Title, plan.Description, plan.Sector, details,
		plan.MarketingMaturity, plan.MarketingGoal, plan.CommercialMaturity, plan.CommercialGoal, plan.UserID)
	return row.Scan(&plan.CreatedAt, &plan.UpdatedAt)
}

// GetProjectPlan fetches one plan owned by the user, with its actions in order.
func (r *ProjectRepositoryPG) GetProjectPlan(ctx context.Context, id, userID string) (*domain.ProjectPlan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectPlanColumns+` FROM project_plans WHERE id = $1 AND user_id = $2`, id, userID)
	plan, err := scanProjectPlan(row)
	if err != nil {
		return nil, err
	}
	actions, err := r.listActions(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Actions = actions
	return plan, nil
}

// ListProjectPlans returns the user's plans, newest first, without actions.
func (r *ProjectRepositoryPG) ListProjectPlans(ctx context.Context, userID string) ([]domain.ProjectPlan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectPlanColumns+` FROM project_plans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.ProjectPlan
	for rows.Next() {
		plan, err := scanProjectPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

// CountProjectPlans counts the user's plans.
func (r *ProjectRepositoryPG) CountProjectPlans(ctx context.Context, userID string) (int, error) {
	return r.countRow(ctx, `SELECT COUNT(*) FROM project_plans WHERE user_id = $1`, userID)
}

// InsertPlanActions batch-inserts the generated actions.
func (r *ProjectRepositoryPG) InsertPlanActions(ctx context.Context, actions []domain.PlanAction) error {
	if len(actions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, action := range actions {
		batch.Queue(`
INSERT INTO plan_actions (id, title, description, priority, "order", is_selected, project_plan_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			action.ID, action.Title, action.Description, action.Priority, action.Order, action.IsSelected, action.ProjectPlanID)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range actions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert actions: %w", err)
		}
	}
	return nil
}

const planActionColumns = `id, title, description, priority, "order", is_selected, project_plan_id, created_at`

// GetPlanAction fetches one action scoped to its parent plan.
func (r *ProjectRepositoryPG) GetPlanAction(ctx context.Context, id, projectPlanID string) (*domain.PlanAction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+planActionColumns+` FROM plan_actions WHERE id = $1 AND project_plan_id = $2`, id, projectPlanID)
	return scanPlanAction(row)
}

// SetActionSelected updates the isSelected flag and returns the fresh row.
func (r *ProjectRepositoryPG) SetActionSelected(ctx context.Context, id, projectPlanID string, selected bool) (*domain.PlanAction, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE plan_actions
SET is_selected = $3
WHERE id = $1 AND project_plan_id = $2
RETURNING `+planActionColumns, id, projectPlanID, selected)
	return scanPlanAction(row)
}

// CountPlanActions counts actions across all of the user's plans.
func (r *ProjectRepositoryPG) CountPlanActions(ctx context.Context, userID string) (int, error) {
	return r.countRow(ctx, `
SELECT COUNT(*)
FROM plan_actions a
JOIN project_plans p ON p.id = a.project_plan_id
WHERE p.user_id = $1`, userID)
}

// CountDetailedActions counts details across all of the user's plans.
func (r *ProjectRepositoryPG) CountDetailedActions(ctx context.Context, userID string) (int, error) {
	return r.countRow(ctx, `
SELECT COUNT(*)
FROM detailed_actions d
JOIN plan_actions a ON a.id = d.plan_action_id
JOIN project_plans p ON p.id = a.project_plan_id
WHERE p.user_id = $1`, userID)
}

// CreateDetailedActionWithinQuota locks the user row, re-counts the user's
// details and inserts the new one in a single transaction. Concurrent inserts
// for the same user serialize on the row lock, so the count cannot go stale
// between check and insert.
func (r *ProjectRepositoryPG) CreateDetailedActionWithinQuota(ctx context.Context, userID string, detail *domain.DetailedAction, maxDetails int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var lockedID string
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock user: %w", err)
	}

	if maxDetails != domain.Unlimited {
		var existing int
		err := tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM detailed_actions d
JOIN plan_actions a ON a.id = d.plan_action_id
JOIN project_plans p ON p.id = a.project_plan_id
WHERE p.user_id = $1`, userID).Scan(&existing)
		if err != nil {
			return fmt.Errorf("count details: %w", err)
		}
		if !domain.WithinLimit(maxDetails, existing, 1) {
			return fmt.Errorf("%w: %d of %d detailed actions used", domain.ErrQuotaExceeded, existing, maxDetails)
		}
	}

	row := tx.QueryRow(ctx, `
INSERT INTO detailed_actions (id, title, description, "order", plan_action_id, created_at)
VALUES ($1, $2, $3,
        (SELECT COALESCE(MAX("order"), 0) + 1 FROM detailed_actions WHERE plan_action_id = $4),
        $4, NOW())
RETURNING "order", created_at`,
		detail.ID, detail.Title, detail.Description, detail.PlanActionID)
	if err := row.Scan(&detail.Order, &detail.CreatedAt); err != nil {
		return fmt.Errorf("insert detail: %w", err)
	}

	return tx.Commit(ctx)
}

// ListDetailedActions returns the details appended to one action, in order.
func (r *ProjectRepositoryPG) ListDetailedActions(ctx context.Context, planActionID string) ([]domain.DetailedAction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, title, description, "order", plan_action_id, created_at
FROM detailed_actions
WHERE plan_action_id = $1
ORDER BY "order"`, planActionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.DetailedAction
	for rows.Next() {
		var d domain.DetailedAction
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Order, &d.PlanActionID, &d.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *ProjectRepositoryPG) listActions(ctx context.Context, projectPlanID string) ([]domain.PlanAction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planActionColumns+` FROM plan_actions WHERE project_plan_id = $1 ORDER BY "order"`, projectPlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.PlanAction
	for rows.Next() {
		action, err := scanPlanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, *action)
	}
	return actions, rows.Err()
}

func (r *ProjectRepositoryPG) countRow(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanProjectPlan(row pgx.Row) (*domain.ProjectPlan, error) {
	var p domain.ProjectPlan
	var details []byte
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Sector, &details,
		&p.MarketingMaturity, &p.MarketingGoal, &p.CommercialMaturity, &p.CommercialGoal,
		&p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &p.SectorDetails); err != nil {
			return nil, fmt.Errorf("decode sector details: %w", err)
		}
	}
	return &p, nil
}

func scanPlanAction(row pgx.Row) (*domain.PlanAction, error) {
	var a domain.PlanAction
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Priority, &a.Order, &a.IsSelected, &a.ProjectPlanID, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

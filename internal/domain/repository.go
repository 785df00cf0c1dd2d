package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// UpsertByEmail provisions the account on first sight with the Freemium
	// plan and refreshes the display name on subsequent calls.
	UpsertByEmail(ctx context.Context, user *User) (*User, error)
}

// PlanRepository reads the subscription tier catalog.
type PlanRepository interface {
	GetByID(ctx context.Context, id string) (*Plan, error)
	GetForUser(ctx context.Context, userID string) (*Plan, error)
	List(ctx context.Context) ([]Plan, error)
	// Seed upserts the catalog rows by stable id; re-running must not
	// duplicate rows or diverge from the canonical tiers.
	Seed(ctx context.Context, tiers []Plan) error
}

// ProjectRepository persists project plans and their generated children.
type ProjectRepository interface {
	CreateProjectPlan(ctx context.Context, plan *ProjectPlan) error
	GetProjectPlan(ctx context.Context, id, userID string) (*ProjectPlan, error)
	ListProjectPlans(ctx context.Context, userID string) ([]ProjectPlan, error)
	CountProjectPlans(ctx context.Context, userID string) (int, error)

	InsertPlanActions(ctx context.Context, actions []PlanAction) error
	GetPlanAction(ctx context.Context, id, projectPlanID string) (*PlanAction, error)
	SetActionSelected(ctx context.Context, id, projectPlanID string, selected bool) (*PlanAction, error)
	CountPlanActions(ctx context.Context, userID string) (int, error)

	// CountDetailedActions counts details across all of the user's plans.
	CountDetailedActions(ctx context.Context, userID string) (int, error)
	// CreateDetailedActionWithinQuota re-counts the user's details and inserts
	// the new row in one transaction, returning ErrQuotaExceeded when the
	// insert would push the count past maxDetails (Unlimited disables the
	// check). The detail's Order is assigned inside the transaction.
	CreateDetailedActionWithinQuota(ctx context.Context, userID string, detail *DetailedAction, maxDetails int) error
	ListDetailedActions(ctx context.Context, planActionID string) ([]DetailedAction, error)
}

// UsageRepository appends usage events for generation requests.
type UsageRepository interface {
	RecordEvent(ctx context.Context, event UsageEvent) error
}

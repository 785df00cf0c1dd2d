package quota

import (
	"context"
	"errors"
	"testing"

	"stratplan/internal/domain"
)

type fakePlans struct {
	plan domain.Plan
}

func (f *fakePlans) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	plan := f.plan
	return &plan, nil
}

func (f *fakePlans) GetForUser(ctx context.Context, userID string) (*domain.Plan, error) {
	plan := f.plan
	return &plan, nil
}

func (f *fakePlans) List(ctx context.Context) ([]domain.Plan, error) {
	return []domain.Plan{f.plan}, nil
}

func (f *fakePlans) Seed(ctx context.Context, tiers []domain.Plan) error {
	return nil
}

type fakeCounts struct {
	domain.ProjectRepository

	projects int
	actions  int
	details  int
}

func (f *fakeCounts) CountProjectPlans(ctx context.Context, userID string) (int, error) {
	return f.projects, nil
}

func (f *fakeCounts) CountPlanActions(ctx context.Context, userID string) (int, error) {
	return f.actions, nil
}

func (f *fakeCounts) CountDetailedActions(ctx context.Context, userID string) (int, error) {
	return f.details, nil
}

func TestCheckDetailedActions(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name       string
		maxDetails int
		existing   int
		requested  int
		allowed    bool
	}{
		{name: "one below limit", maxDetails: 10, existing: 9, requested: 1, allowed: true},
		{name: "would exceed limit", maxDetails: 10, existing: 9, requested: 2, allowed: false},
		{name: "unlimited", maxDetails: domain.Unlimited, existing: 9000, requested: 100, allowed: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			checker := NewChecker(
				&fakePlans{plan: domain.Plan{Name: "Freemium", MaxDetails: tc.maxDetails}},
				&fakeCounts{details: tc.existing},
			)
			decision, err := checker.Check(context.Background(), KindDetailedActions, "u1", tc.requested)
			if err != nil {
				t.Fatalf("Check returned error: %v", err)
			}
			if decision.Allowed != tc.allowed {
				t.Fatalf("Allowed = %v, want %v (reason %q)", decision.Allowed, tc.allowed, decision.Reason)
			}
			if !tc.allowed && decision.Reason == "" {
				t.Fatal("denial carries no reason")
			}
		})
	}
}

func TestCheckProjects(t *testing.T) {
	t.Parallel()
	checker := NewChecker(
		&fakePlans{plan: domain.Plan{Name: "Freemium", MaxProjects: 1}},
		&fakeCounts{projects: 1},
	)
	decision, err := checker.Check(context.Background(), KindProjects, "u1", 1)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("second project allowed on a one-project plan")
	}
}

func TestCheckUnknownKind(t *testing.T) {
	t.Parallel()
	checker := NewChecker(&fakePlans{}, &fakeCounts{})
	if _, err := checker.Check(context.Background(), Kind("bogus"), "u1", 1); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

type failingPlans struct {
	fakePlans
}

func (f *failingPlans) GetForUser(ctx context.Context, userID string) (*domain.Plan, error) {
	return nil, domain.ErrNotFound
}

func TestCheckPropagatesPlanLookupFailure(t *testing.T) {
	t.Parallel()
	checker := NewChecker(&failingPlans{}, &fakeCounts{})
	_, err := checker.Check(context.Background(), KindProjects, "u1", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPolicyActionBudget(t *testing.T) {
	t.Parallel()
	policy := ResolvePolicy(domain.Plan{Name: "Starter", MaxActions: 15})
	if got := policy.ActionBudget(10); got != 5 {
		t.Fatalf("ActionBudget(10) = %d, want 5", got)
	}
	unlimited := ResolvePolicy(domain.Plan{Name: "Enterprise", MaxActions: domain.Unlimited})
	if got := unlimited.ActionBudget(10000); got != domain.Unlimited {
		t.Fatalf("ActionBudget on unlimited = %d, want Unlimited", got)
	}
}

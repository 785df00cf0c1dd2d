// Package quota decides whether a user's plan tier allows creating more
// countable resources. Checks are pure reads; the race between a check and the
// following insert is closed by the repository's transactional insert path.
package quota

import (
	"context"
	"fmt"

	"stratplan/internal/domain"
)

// Kind names a countable resource governed by plan limits.
type Kind string

const (
	KindProjects        Kind = "projects"
	KindPlanActions     Kind = "planActions"
	KindDetailedActions Kind = "detailedActions"
)

// Decision is the outcome of a quota check. Reason is set only on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

// Policy is the per-request snapshot of the caller's plan limits, resolved
// once and passed down instead of re-branching on roles in the data path.
type Policy struct {
	PlanName    string
	MaxProjects int
	MaxActions  int
	MaxDetails  int
}

// ResolvePolicy builds the policy for a plan tier.
func ResolvePolicy(plan domain.Plan) Policy {
	return Policy{
		PlanName:    plan.Name,
		MaxProjects: plan.MaxProjects,
		MaxActions:  plan.MaxActions,
		MaxDetails:  plan.MaxDetails,
	}
}

// ActionBudget returns how many actions may still be generated given the
// existing count, Unlimited when the tier is unbounded.
func (p Policy) ActionBudget(existing int) int {
	return domain.RemainingBudget(p.MaxActions, existing)
}

// Checker computes usage counts and compares them against plan limits.
type Checker struct {
	plans    domain.PlanRepository
	projects domain.ProjectRepository
}

// NewChecker builds a Checker over the given repositories.
func NewChecker(plans domain.PlanRepository, projects domain.ProjectRepository) *Checker {
	return &Checker{plans: plans, projects: projects}
}

// Check reports whether the user may create requested more resources of the
// given kind. planActions is enforced by truncation in the orchestrator, so a
// check for that kind only reports whether any budget remains.
func (c *Checker) Check(ctx context.Context, kind Kind, userID string, requested int) (Decision, error) {
	plan, err := c.plans.GetForUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("resolve plan: %w", err)
	}
	policy := ResolvePolicy(*plan)

	var limit, existing int
	switch kind {
	case KindProjects:
		limit = policy.MaxProjects
		existing, err = c.projects.CountProjectPlans(ctx, userID)
	case KindPlanActions:
		limit = policy.MaxActions
		existing, err = c.projects.CountPlanActions(ctx, userID)
	case KindDetailedActions:
		limit = policy.MaxDetails
		existing, err = c.projects.CountDetailedActions(ctx, userID)
	default:
		return Decision{}, fmt.Errorf("unknown quota kind %q", kind)
	}
	if err != nil {
		return Decision{}, fmt.Errorf("count %s: %w", kind, err)
	}

	if domain.WithinLimit(limit, existing, requested) {
		return Decision{Allowed: true}, nil
	}
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("%s plan allows %d %s, %d already used", policy.PlanName, limit, kind, existing),
	}, nil
}

// PolicyForUser resolves the caller's plan into a Policy.
func (c *Checker) PolicyForUser(ctx context.Context, userID string) (Policy, error) {
	plan, err := c.plans.GetForUser(ctx, userID)
	if err != nil {
		return Policy{}, fmt.Errorf("resolve plan: %w", err)
	}
	return ResolvePolicy(*plan), nil
}

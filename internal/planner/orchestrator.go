// Package planner composes quota checks, prompt construction, the completion
// provider and persistence for the two generation flows.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"stratplan/internal/domain"
	"stratplan/internal/providers/completion"
	"stratplan/internal/quota"
)

// Orchestrator drives plan-generation requests to completion or first failure.
type Orchestrator struct {
	projects  domain.ProjectRepository
	quota     *quota.Checker
	completer completion.Completer
	logger    zerolog.Logger
}

// New builds an Orchestrator with explicitly injected collaborators.
func New(projects domain.ProjectRepository, checker *quota.Checker, completer completion.Completer, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		projects:  projects,
		quota:     checker,
		completer: completer,
		logger:    logger,
	}
}

// CreateProjectPlanInput is the caller-supplied business context.
type CreateProjectPlanInput struct {
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Sector             string         `json:"sector"`
	SectorDetails      map[string]any `json:"sectorDetails"`
	MarketingMaturity  string         `json:"marketingMaturity"`
	MarketingGoal      string         `json:"marketingGoal"`
	CommercialMaturity string         `json:"commercialMaturity"`
	CommercialGoal     string         `json:"commercialGoal"`
}

func (in CreateProjectPlanInput) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"title", in.Title},
		{"description", in.Description},
		{"sector", in.Sector},
		{"marketingMaturity", in.MarketingMaturity},
		{"marketingGoal", in.MarketingGoal},
		{"commercialMaturity", in.CommercialMaturity},
		{"commercialGoal", in.CommercialGoal},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, r.field)
		}
	}
	return nil
}

// CreateProjectPlan persists the plan, generates its initial actions and
// persists them in a batch. The parent plan is persisted before the completion
// call and is deliberately not rolled back when generation fails afterwards;
// in that case the persisted plan is returned together with the error so
// callers can surface the orphaned record.
func (o *Orchestrator) CreateProjectPlan(ctx context.Context, userID string, in CreateProjectPlanInput) (*domain.ProjectPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	decision, err := o.quota.Check(ctx, quota.KindProjects, userID, 1)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, decision.Reason)
	}

	policy, err := o.quota.PolicyForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	existingActions, err := o.projects.CountPlanActions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}
	// Actions are limited by truncation, never rejection; a fully spent
	// budget is the one case where generating would be pointless.
	budget := policy.ActionBudget(existingActions)
	if budget == 0 {
		return nil, fmt.Errorf("%w: %s plan action limit reached", domain.ErrQuotaExceeded, policy.PlanName)
	}

	plan := &domain.ProjectPlan{
		ID:                 uuid.NewString(),
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		Sector:             strings.TrimSpace(in.Sector),
		SectorDetails:      in.SectorDetails,
		MarketingMaturity:  in.MarketingMaturity,
		MarketingGoal:      in.MarketingGoal,
		CommercialMaturity: in.CommercialMaturity,
		CommercialGoal:     in.CommercialGoal,
		UserID:             userID,
	}
	if err := o.projects.CreateProjectPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("persist project plan: %w", err)
	}

	msgs := completion.BuildPlanPrompt(completion.PlanContext{
		Title:              plan.Title,
		Description:        plan.Description,
		Sector:             plan.Sector,
		SectorDetails:      plan.SectorDetails,
		MarketingMaturity:  plan.MarketingMaturity,
		MarketingGoal:      plan.MarketingGoal,
		CommercialMaturity: plan.CommercialMaturity,
		CommercialGoal:     plan.CommercialGoal,
		MaxActions:         budget,
	})
	raw, err := o.completer.Complete(ctx, msgs)
	if err != nil {
		o.logger.Error().Err(err).Str("project_plan_id", plan.ID).Msg("action generation failed")
		return plan, err
	}
	drafts, err := completion.ParsePlanActions(raw, budget)
	if err != nil {
		o.logger.Error().Err(err).Str("project_plan_id", plan.ID).Msg("action parsing failed")
		return plan, err
	}

	actions := make([]domain.PlanAction, 0, len(drafts))
	for _, draft := range drafts {
		actions = append(actions, domain.PlanAction{
			ID:            uuid.NewString(),
			Title:         draft.Title,
			Description:   draft.Description,
			Priority:      draft.Priority,
			Order:         draft.Order,
			ProjectPlanID: plan.ID,
		})
	}
	if err := o.projects.InsertPlanActions(ctx, actions); err != nil {
		return plan, fmt.Errorf("persist actions: %w", err)
	}
	plan.Actions = actions
	return plan, nil
}

// GenerateDetailedAction expands one action into a DetailedAction. Repeat
// calls append additional details rather than replacing earlier ones.
func (o *Orchestrator) GenerateDetailedAction(ctx context.Context, userID, planID, actionID string) (*domain.DetailedAction, error) {
	plan, err := o.projects.GetProjectPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	action, err := o.projects.GetPlanAction(ctx, actionID, plan.ID)
	if err != nil {
		return nil, err
	}

	decision, err := o.quota.Check(ctx, quota.KindDetailedActions, userID, 1)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, decision.Reason)
	}
	policy, err := o.quota.PolicyForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	msgs := completion.BuildDetailPrompt(completion.DetailContext{
		ProjectTitle:      plan.Title,
		Sector:            plan.Sector,
		MarketingGoal:     plan.MarketingGoal,
		CommercialGoal:    plan.CommercialGoal,
		ActionTitle:       action.Title,
		ActionDescription: action.Description,
	})
	raw, err := o.completer.Complete(ctx, msgs)
	if err != nil {
		o.logger.Error().Err(err).Str("plan_action_id", action.ID).Msg("detail generation failed")
		return nil, err
	}
	description, err := completion.ParseDetailedAction(raw)
	if err != nil {
		o.logger.Error().Err(err).Str("plan_action_id", action.ID).Msg("detail parsing failed")
		return nil, err
	}

	detail := &domain.DetailedAction{
		ID:           uuid.NewString(),
		Title:        action.Title,
		Description:  description,
		PlanActionID: action.ID,
	}
	// The insert re-checks the detail count in the same transaction so two
	// concurrent requests cannot jointly exceed the limit.
	if err := o.projects.CreateDetailedActionWithinQuota(ctx, userID, detail, policy.MaxDetails); err != nil {
		return nil, err
	}
	return detail, nil
}

// DetailResult is the per-item outcome of a batch detail generation.
type DetailResult struct {
	ActionID string
	Detail   *domain.DetailedAction
	Err      error
}

// GenerateDetailedActions expands each action id independently and
// concurrently, keyed by action id rather than completion order. A failed item
// does not roll back details generated for its siblings; callers receive the
// per-item results alongside the first failure.
func (o *Orchestrator) GenerateDetailedActions(ctx context.Context, userID, planID string, actionIDs []string) ([]DetailResult, error) {
	if len(actionIDs) == 0 {
		return nil, fmt.Errorf("%w: actionIds is required", domain.ErrValidation)
	}
	existing, err := o.projects.CountDetailedActions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count details: %w", err)
	}
	policy, err := o.quota.PolicyForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !domain.WithinLimit(policy.MaxDetails, existing, len(actionIDs)) {
		return nil, fmt.Errorf("%w: %s plan allows %d detailed actions, %d already used",
			domain.ErrQuotaExceeded, policy.PlanName, policy.MaxDetails, existing)
	}

	results := make([]DetailResult, len(actionIDs))
	// Plain errgroup.Group, not WithContext: a failing item must not cancel
	// its siblings, which run to completion and keep their rows.
	var g errgroup.Group
	for i, actionID := range actionIDs {
		i, actionID := i, actionID
		g.Go(func() error {
			detail, err := o.GenerateDetailedAction(ctx, userID, planID, actionID)
			results[i] = DetailResult{ActionID: actionID, Detail: detail, Err: err}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch detail generation: %w", err)
	}
	return results, nil
}

// ToggleActionSelected flips the isSelected flag on an action owned by the
// caller through its parent plan.
func (o *Orchestrator) ToggleActionSelected(ctx context.Context, userID, planID, actionID string) (*domain.PlanAction, error) {
	plan, err := o.projects.GetProjectPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	action, err := o.projects.GetPlanAction(ctx, actionID, plan.ID)
	if err != nil {
		return nil, err
	}
	return o.projects.SetActionSelected(ctx, action.ID, plan.ID, !action.IsSelected)
}

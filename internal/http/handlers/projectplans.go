package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"stratplan/internal/domain"
	"stratplan/internal/planner"
)

type planActionResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Order       int             `json:"order"`
	IsSelected  bool            `json:"isSelected"`
}

type projectPlanResponse struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Sector             string               `json:"sector"`
	SectorDetails      map[string]any       `json:"sectorDetails,omitempty"`
	MarketingMaturity  string               `json:"marketingMaturity"`
	MarketingGoal      string               `json:"marketingGoal"`
	CommercialMaturity string               `json:"commercialMaturity"`
	CommercialGoal     string               `json:"commercialGoal"`
	Actions            []planActionResponse `json:"actions"`
	CreatedAt          time.Time            `json:"createdAt"`
}

type detailedActionResponse struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	DetailedDescription json.RawMessage `json:"detailedDescription"`
	Order               int             `json:"order"`
	PlanActionID        string          `json:"planActionId"`
}

func toProjectPlanResponse(plan *domain.ProjectPlan) projectPlanResponse {
	actions := make([]planActionResponse, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		actions = append(actions, planActionResponse{
			ID:          action.ID,
			Title:       action.Title,
			Description: action.Description,
			Priority:    action.Priority,
			Order:       action.Order,
			IsSelected:  action.IsSelected,
		})
	}
	return projectPlanResponse{
		ID:                 plan.ID,
		Title:              plan.Title,
		Description:        plan.Description,
		Sector:             plan.Sector,
		SectorDetails:      plan.SectorDetails,
		MarketingMaturity:  plan.MarketingMaturity,
		MarketingGoal:      plan.MarketingGoal,
		CommercialMaturity: plan.CommercialMaturity,
		CommercialGoal:     plan.CommercialGoal,
		Actions:            actions,
		CreatedAt:          plan.CreatedAt,
	}
}

func toDetailedActionResponse(detail *domain.DetailedAction) detailedActionResponse {
	return detailedActionResponse{
		ID:                  detail.ID,
		Title:               detail.Title,
		DetailedDescription: detail.Description,
		Order:               detail.Order,
		PlanActionID:        detail.PlanActionID,
	}
}

// ProjectPlansCreate creates the plan and generates its initial actions.
func (a *App) ProjectPlansCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var input planner.CreateProjectPlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	started := time.Now()
	plan, err := a.Planner.CreateProjectPlan(r.Context(), userID, input)
	a.recordUsage(r, userID, domain.UsageEventPlanGenerate, err == nil, started)
	if err != nil {
		if plan != nil {
			// The parent row survived a failed generation; point the
			// caller at it so a retry can attach actions later.
			a.Logger.Error().Err(err).Str("project_plan_id", plan.ID).Msg("plan persisted without actions")
		}
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toProjectPlanResponse(plan))
}

// ProjectPlansList returns the caller's plans without their actions.
func (a *App) ProjectPlansList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	plans, err := a.Projects.ListProjectPlans(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]projectPlanResponse, 0, len(plans))
	for i := range plans {
		items = append(items, toProjectPlanResponse(&plans[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// ProjectPlanGet returns one plan with its actions in order.
func (a *App) ProjectPlanGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	planID := chi.URLParam(r, "id")
	plan, err := a.Projects.GetProjectPlan(r.Context(), planID, userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProjectPlanResponse(plan))
}

// ActionDetailGenerate expands one action into a new DetailedAction.
func (a *App) ActionDetailGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	planID := chi.URLParam(r, "id")
	actionID := chi.URLParam(r, "actionID")
	started := time.Now()
	detail, err := a.Planner.GenerateDetailedAction(r.Context(), userID, planID, actionID)
	a.recordUsage(r, userID, domain.UsageEventDetailGenerate, err == nil, started)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toDetailedActionResponse(detail))
}

type batchDetailRequest struct {
	ActionIDs []string `json:"actionIds"`
}

type batchDetailItem struct {
	ActionID       string                  `json:"actionId"`
	OK             bool                    `json:"ok"`
	DetailedAction *detailedActionResponse `json:"detailedAction,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

// ActionDetailBatch expands several actions concurrently. Items that succeed
// keep their rows even when a sibling fails; the response carries per-item
// status and the overall status reflects whether every item succeeded.
func (a *App) ActionDetailBatch(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	planID := chi.URLParam(r, "id")
	var req batchDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	started := time.Now()
	results, err := a.Planner.GenerateDetailedActions(r.Context(), userID, planID, req.ActionIDs)
	a.recordUsage(r, userID, domain.UsageEventDetailGenerate, err == nil, started)
	if err != nil && results == nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]batchDetailItem, 0, len(results))
	for _, res := range results {
		item := batchDetailItem{ActionID: res.ActionID, OK: res.Err == nil}
		if res.Err != nil {
			item.Error = "generation failed"
		} else if res.Detail != nil {
			detail := toDetailedActionResponse(res.Detail)
			item.DetailedAction = &detail
		}
		items = append(items, item)
	}
	status := http.StatusCreated
	if err != nil {
		status = http.StatusInternalServerError
		a.Logger.Error().Err(err).Str("project_plan_id", planID).Msg("batch detail generation failed")
	}
	a.json(w, status, map[string]any{"results": items})
}

// ActionToggle flips the isSelected flag on one action.
func (a *App) ActionToggle(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	planID := chi.URLParam(r, "id")
	actionID := chi.URLParam(r, "actionID")
	action, err := a.Planner.ToggleActionSelected(r.Context(), userID, planID, actionID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, planActionResponse{
		ID:          action.ID,
		Title:       action.Title,
		Description: action.Description,
		Priority:    action.Priority,
		Order:       action.Order,
		IsSelected:  action.IsSelected,
	})
}

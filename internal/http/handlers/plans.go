package handlers

import (
	"net/http"

	"stratplan/internal/domain"
)

type planResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxProjects int    `json:"maxProjects"`
	MaxActions  int    `json:"maxActions"`
	MaxDetails  int    `json:"maxDetails"`
}

// PlansList returns the subscription tier catalog.
func (a *App) PlansList(w http.ResponseWriter, r *http.Request) {
	plans, err := a.Plans.List(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		items = append(items, planResponse{
			ID:          p.ID,
			Name:        p.Name,
			MaxProjects: p.MaxProjects,
			MaxActions:  p.MaxActions,
			MaxDetails:  p.MaxDetails,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// Me returns the caller's account, plan tier and current usage counts.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	plan, err := a.Plans.GetForUser(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	projects, err := a.Projects.CountProjectPlans(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	actions, err := a.Projects.CountPlanActions(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	details, err := a.Projects.CountDetailedActions(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"plan": planResponse{
			ID:          plan.ID,
			Name:        plan.Name,
			MaxProjects: plan.MaxProjects,
			MaxActions:  plan.MaxActions,
			MaxDetails:  plan.MaxDetails,
		},
		"usage": map[string]any{
			"projects":            projects,
			"planActions":         actions,
			"detailedActions":     details,
			"projectsLeft":        domain.RemainingBudget(plan.MaxProjects, projects),
			"planActionsLeft":     domain.RemainingBudget(plan.MaxActions, actions),
			"detailedActionsLeft": domain.RemainingBudget(plan.MaxDetails, details),
		},
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"stratplan/internal/domain"
	"stratplan/internal/infra"
	"stratplan/internal/infra/geoip"
	"stratplan/internal/middleware"
	"stratplan/internal/planner"
	"stratplan/internal/providers/completion"
	"stratplan/internal/quota"
)

// Planner is the slice of the orchestrator the handlers depend on.
type Planner interface {
	CreateProjectPlan(ctx context.Context, userID string, in planner.CreateProjectPlanInput) (*domain.ProjectPlan, error)
	GenerateDetailedAction(ctx context.Context, userID, planID, actionID string) (*domain.DetailedAction, error)
	GenerateDetailedActions(ctx context.Context, userID, planID string, actionIDs []string) ([]planner.DetailResult, error)
	ToggleActionSelected(ctx context.Context, userID, planID, actionID string) (*domain.PlanAction, error)
}

// App holds the HTTP surface's injected dependencies.
type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Users    domain.UserRepository
	Plans    domain.PlanRepository
	Projects domain.ProjectRepository
	Usage    domain.UsageRepository
	Quota    *quota.Checker
	Planner  Planner
	Geo      geoip.CountryResolver
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, errorResponse{Error: errCode, Message: msg})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// domainError maps the error taxonomy to HTTP status and error code. Provider
// and parse failures both surface as a generic 500 with the cause logged.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var completionErr *completion.CompletionError
	var malformedErr *completion.MalformedResponseError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusForbidden, "quota_exceeded", err.Error())
	case errors.As(err, &completionErr), errors.As(err, &malformedErr):
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("generation failed")
		a.error(w, http.StatusInternalServerError, "generation_failed", "action generation failed")
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("internal error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// recordUsage appends a usage event, best effort: a failed insert never fails
// the request.
func (a *App) recordUsage(r *http.Request, userID, eventType string, success bool, started time.Time) {
	if a.Usage == nil {
		return
	}
	event := domain.UsageEvent{
		UserID:    userID,
		EventType: eventType,
		Success:   success,
		LatencyMS: int(time.Since(started).Milliseconds()),
		Country:   a.countryFor(r),
	}
	if err := a.Usage.RecordEvent(r.Context(), event); err != nil {
		a.Logger.Warn().Err(err).Msg("usage event insert failed")
	}
}

func (a *App) countryFor(r *http.Request) string {
	if a.Geo == nil {
		return ""
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	code, err := a.Geo.CountryCode(ip)
	if err != nil {
		return ""
	}
	return code
}

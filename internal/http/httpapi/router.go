package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"stratplan/internal/http/handlers"
	"stratplan/internal/middleware"
)

// NewRouter wires the HTTP surface: public catalog and health endpoints plus
// the authenticated project-plan routes.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/plans", app.PlansList)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))

		r.Get("/v1/me", app.Me)

		r.Route("/v1/project-plans", func(r chi.Router) {
			r.Post("/", app.ProjectPlansCreate)
			r.Get("/", app.ProjectPlansList)
			r.Get("/{id}", app.ProjectPlanGet)
			r.Post("/{id}/actions/detailed", app.ActionDetailBatch)
			r.Post("/{id}/actions/{actionID}/detailed", app.ActionDetailGenerate)
			r.Patch("/{id}/actions/{actionID}", app.ActionToggle)
		})
	})

	return r
}

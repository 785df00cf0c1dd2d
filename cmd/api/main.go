package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stratplan/internal/adapter/repo"
	"stratplan/internal/domain"
	"stratplan/internal/http/handlers"
	"stratplan/internal/http/httpapi"
	"stratplan/internal/infra"
	"stratplan/internal/infra/geoip"
	"stratplan/internal/planner"
	"stratplan/internal/providers/completion"
	"stratplan/internal/quota"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	users := repo.NewUserRepository(dbpool)
	plans := repo.NewPlanRepository(dbpool)
	projects := repo.NewProjectRepository(dbpool)
	usage := repo.NewUsageRepository(dbpool)

	if cfg.SeedPlansOnStartup {
		if err := plans.Seed(ctx, domain.CatalogTiers()); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed plan catalog")
		}
	}

	completer, err := completion.NewClient(completion.Options{
		APIKey:       cfg.CompletionAPIKey,
		Model:        cfg.CompletionModel,
		BaseURL:      cfg.CompletionBaseURL,
		Organization: cfg.CompletionOrg,
		Timeout:      cfg.CompletionTimeout,
		OnWarning: func(reason, detail string) {
			logger.Warn().Str("detail", detail).Msgf("completion client: %s", reason)
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build completion client")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	checker := quota.NewChecker(plans, projects)
	orchestrator := planner.New(projects, checker, completer, logger)

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Users:    users,
		Plans:    plans,
		Projects: projects,
		Usage:    usage,
		Quota:    checker,
		Planner:  orchestrator,
		Geo:      resolver,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

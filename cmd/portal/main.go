package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/app"
	"github.com/clinicportal/clinicportal/internal/auth"
	"github.com/clinicportal/clinicportal/internal/dashboard"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/observability"
	"github.com/clinicportal/clinicportal/internal/platform/cache"
	"github.com/clinicportal/clinicportal/internal/platform/db"
	"github.com/clinicportal/clinicportal/internal/shared"
	"github.com/clinicportal/clinicportal/internal/view"
	"github.com/clinicportal/clinicportal/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	if dbpool != nil {
		defer dbpool.Close()
	} else {
		logger.Info("PG_DSN not set, audit trail disabled")
	}

	redisOpts := cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	api, err := apiclient.New(apiclient.Config{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Observer: metrics,
	})
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	workspaces := feature.NewWorkspaces(cfg.WorkspaceTTL)
	go workspaces.Run(ctx, time.Minute)

	deps := &feature.Deps{
		Logger:      logger,
		Templates:   templates,
		CSRF:        csrfManager,
		Forms:       shared.NewFormTokens(redisClient, cfg.FormTokenTTL),
		Workspaces:  workspaces,
		ExportLimit: cfg.ExportLimit,
	}
	var authRepo auth.Repository = auth.NopRepository{}
	if dbpool != nil {
		deps.Audit = shared.NewAuditLogger(dbpool)
		authRepo = auth.NewRepository(dbpool)
	}

	modules := app.BuildModules(deps, api, cfg)
	guard := auth.NewGuard(deps)
	authHandler := auth.NewHandler(logger, auth.NewService(api, authRepo), deps, sessionManager, guard)

	inspector := asynq.NewInspector(redisOpts.AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	probeStatus := jobs.NewStatusStore(redisClient)
	jobHandler := jobs.NewHandler(inspector, probeStatus, logger)

	jobClient := jobs.NewClient(redisOpts.AsynqOpt())
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	if _, err := jobClient.EnqueueBackendProbe(ctx, time.Now()); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		logger.Warn("enqueue backend probe", slog.Any("error", err))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Deps:           deps,
		Guard:          guard,
		AuthHandler:    authHandler,
		Dashboard:      dashboard.NewHandler(deps),
		Modules:        modules,
		JobHandler:     jobHandler,
		ProbeStatus:    probeStatus,
		Backend:        api,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", api.BaseURL()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

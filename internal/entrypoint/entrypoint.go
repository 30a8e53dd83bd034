package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mangashelf/internal/auth"
	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/demo"
	http_controllers "github.com/mrlokans/mangashelf/internal/http"
	"github.com/mrlokans/mangashelf/internal/logging"
	"github.com/mrlokans/mangashelf/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled or SIGINT/SIGTERM arrives.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *slog.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server so in-flight tasks see a live database
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// Run wires the application and serves HTTP until interrupted.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) error {
	logger.Info("starting mangashelf", "version", version, "database", cfg.Database.Driver, "auth_mode", cfg.Auth.Mode)

	svc, err := NewServices(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("error closing services", "error", err)
		}
	}()

	var authMiddleware *auth.Middleware
	var limiter *auth.RateLimiter
	switch cfg.Auth.Mode {
	case config.AuthModeToken:
		limiter = auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		authMiddleware = auth.NewMiddleware(svc.Users, cfg.Auth, limiter)
	case config.AuthModeNone, "":
		authMiddleware = auth.NewMiddleware(nil, cfg.Auth, nil)
	default:
		return fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        svc.Catalog,
		Loans:          svc.Loans,
		Database:       svc.DB,
		LoanCounter:    svc.LoanStore,
		Audit:          svc.Audit,
		AuditReader:    svc.Audit,
		PayloadSaver:   svc.Auditor,
		AuthMiddleware: authMiddleware,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Version:        version,
		Logger:         logger,
	}
	if svc.Covers != nil {
		routerCfg.CoverCache = svc.Covers
	}
	if cfg.Global.DemoMode {
		logger.Info("demo mode enabled, API is read-only")
		routerCfg.Demo = demo.NewMiddleware(true)
	}

	// Task workers and the cleanup schedule run for the lifetime of the server
	var taskCancel context.CancelFunc
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if svc.Tasks != nil {
		var taskCtx context.Context
		taskCtx, taskCancel = context.WithCancel(context.Background())
		svc.Tasks.Start(taskCtx)
		routerCfg.TaskStatus = svc.Tasks

		cleanupScheduler = scheduler.NewAuditCleanupScheduler(svc.Tasks, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays, logger)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			taskCancel()
			return fmt.Errorf("audit cleanup schedule: %w", err)
		}
		routerCfg.CleanupTrigger = cleanupScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if svc.Tasks != nil {
			svc.Tasks.Stop(ctx)
			taskCancel()
		}
		if limiter != nil {
			limiter.Stop()
		}
	}

	return Serve(ctx, router, cfg, logger, onShutdown)
}

// SetupLogger builds the configured logger and installs it as the slog default.
func SetupLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

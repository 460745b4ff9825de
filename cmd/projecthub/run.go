package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tejas3545/project-hub-sub001/internal/app"
	"github.com/Tejas3545/project-hub-sub001/internal/auth"
	"github.com/Tejas3545/project-hub-sub001/internal/config"
	"github.com/Tejas3545/project-hub-sub001/internal/github"
	"github.com/Tejas3545/project-hub-sub001/internal/ratelimit"
	"github.com/Tejas3545/project-hub-sub001/internal/server"
	"github.com/Tejas3545/project-hub-sub001/internal/storage/sqlite"
	"github.com/Tejas3545/project-hub-sub001/internal/telemetry"
	"github.com/Tejas3545/project-hub-sub001/internal/worker"
)

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slog.Info("starting projecthub", "version", version, "addr", cfg.Server.Addr)

	store, err := sqlite.New(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := config.Bootstrap(ctx, cfg, store); err != nil {
		return err
	}

	// Telemetry
	var metrics *telemetry.Metrics
	promReg := prometheus.NewRegistry()
	if cfg.Telemetry.Metrics.Enabled {
		promReg.MustRegister(collectors.NewGoCollector())
		metrics = telemetry.NewMetrics(promReg)
	}
	if cfg.Telemetry.Tracing.Enabled {
		shutdown, err := telemetry.SetupTracing(ctx, cfg.Telemetry.Tracing.Endpoint, cfg.Telemetry.Tracing.SampleRate)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	// Wire services
	jwt := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	bearer, err := auth.NewBearerAuth(jwt)
	if err != nil {
		return err
	}
	accounts := auth.NewService(store, jwt, cfg.Auth.RefreshTTL)
	stats, err := app.NewStats(store)
	if err != nil {
		return err
	}

	var oauth server.OAuthExchanger
	if cfg.GitHub.OAuthEnabled() {
		oauth = auth.NewGitHubOAuth(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.RedirectURL)
	}

	logger := slog.Default()
	deps := server.Deps{
		Auth:        bearer,
		Accounts:    accounts,
		OAuth:       oauth,
		Catalog:     app.NewCatalog(store),
		Library:     app.NewLibrary(store, logger),
		Reviewer:    app.NewReviewer(store, logger),
		Stats:       stats,
		ReadyCheck:  store.Ping,
		RateLimiter: ratelimit.NewRegistry(cfg.RateLimit.PerMinute),
		Metrics:     metrics,
	}

	mux := http.NewServeMux()
	mux.Handle("/", server.New(deps))
	if cfg.Telemetry.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background workers
	ghClient := github.New(github.WithToken(cfg.GitHub.Token))
	runner := worker.NewRunner(
		worker.NewGitHubSync(store, ghClient, metrics, cfg.Workers.SyncInterval),
		worker.NewPointsRollup(store, metrics, cfg.Workers.RollupInterval),
		worker.NewTokenReaper(store, metrics, cfg.Workers.ReapInterval),
	)
	workerErr := make(chan error, 1)
	go func() { workerErr <- runner.Run(ctx) }()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("projecthub ready", "addr", cfg.Server.Addr)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		return err
	case err := <-workerErr:
		// Workers only stop early on an unrecoverable error.
		workerErr = nil
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	stop()
	if workerErr != nil {
		<-workerErr
	}

	slog.Info("projecthub stopped")
	return nil
}

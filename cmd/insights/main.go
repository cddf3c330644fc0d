// cmd/insights/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-repo-insights/internal/api"
	"github-repo-insights/internal/classifier"
	"github-repo-insights/internal/cloner"
	"github-repo-insights/internal/config"
	"github-repo-insights/internal/fetcher"
	"github-repo-insights/internal/github"
	"github-repo-insights/internal/inspector"
	"github-repo-insights/internal/runner"
	"github-repo-insights/internal/stats"
	"github-repo-insights/internal/store"
	"github-repo-insights/internal/store/pgstore"
	"github-repo-insights/internal/store/redisstore"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "backend", cfg.StoreBackend, "languages", cfg.TargetLanguages)
	if cfg.GithubToken == "" {
		logger.Warn("GITHUB_TOKEN is not set, requests are unauthenticated and heavily rate limited")
	}

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Open the result store
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 5. Initialize application components
	ghClient, err := github.NewClient(cfg.GithubToken, logger, github.Options{
		BaseURL:   cfg.GithubAPIBase,
		UserAgent: cfg.GithubUserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to create github client: %w", err)
	}

	f := fetcher.NewFetcher(ghClient, logger, fetcher.Limits{
		MaxDetailedCommits: cfg.MaxDetailedCommits,
		MaxForks:           cfg.MaxForks,
		Concurrency:        cfg.FetchConcurrency,
		CallTimeout:        cfg.CallTimeout,
	})
	insp := inspector.New(
		cloner.New(cloner.Options{BaseURL: cfg.CloneBaseURL, Depth: cfg.CloneDepth, Token: cfg.GithubToken}, logger),
		classifier.New(nil),
		cfg.CloneDir,
		classifier.Rules{
			AllowedExtensions: cfg.CloneSourceExtensions,
			MinSourceRatio:    cfg.CloneMinSourceRatio,
			MaxDepth:          cfg.CloneMaxDepth,
		},
		logger,
	)
	r := runner.New(f, insp, st, logger, runner.Options{
		Languages:  cfg.TargetLanguages,
		TopN:       cfg.TopN,
		Calculator: stats.Default,
	})

	// 6. Run the batch
	if _, err := r.Run(ctx); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	// 7. Optionally serve the stored reports until shutdown
	if cfg.APIAddr == "" {
		return nil
	}
	return serve(ctx, cfg.APIAddr, api.NewRouter(st, logger), logger)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := runMigrations(cfg.MigrationsPath, cfg.DBURL); err != nil {
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		logger.Info("Database migrations applied successfully")

		dbpool, err := pgxpool.New(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("Database connection established")
		return pgstore.New(dbpool, logger), dbpool.Close, nil
	default:
		client, err := redisstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("Redis connection established")
		return redisstore.New(client, logger), closeQuietly(client, logger), nil
	}
}

func closeQuietly(c io.Closer, logger *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}
}

func serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received. Exiting.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrations(path, dbURL string) error {
	m, err := migrate.New(path, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}

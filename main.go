// Package main implements a service that watches company careers pages
// and sends alerts when new job postings appear.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	gcstorage "cloud.google.com/go/storage"
	"github.com/robfig/cron/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/tsrivatsav/Job-Alerts/adapters"
	"github.com/tsrivatsav/Job-Alerts/config"
	"github.com/tsrivatsav/Job-Alerts/diff"
	"github.com/tsrivatsav/Job-Alerts/notify"
	"github.com/tsrivatsav/Job-Alerts/orchestrate"
	"github.com/tsrivatsav/Job-Alerts/roster"
	"github.com/tsrivatsav/Job-Alerts/scrape"
	"github.com/tsrivatsav/Job-Alerts/server"
	"github.com/tsrivatsav/Job-Alerts/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, counter, cleanup, err := buildSeenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize seen store", "backend", cfg.SeenBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	companyRoster, err := buildRoster(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize roster", "backend", cfg.RosterBackend, "error", err)
		os.Exit(1)
	}

	provider, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize notification provider", "provider", cfg.NotifyProvider, "error", err)
		os.Exit(1)
	}

	registry := adapters.NewRegistry(adapters.NewClient(logger))
	task := scrape.New(registry, diff.New(store, logger), notify.New(provider, logger), logger)
	orch := orchestrate.New(companyRoster, registry, task, cfg.MaxConcurrency, logger)

	if cfg.CronSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.CronSpec, func() {
			if _, err := orch.RunCycle(ctx); err != nil {
				logger.Error("Scheduled cycle failed", "error", err)
			}
		}); err != nil {
			logger.Error("Invalid cycle schedule", "spec", cfg.CronSpec, "error", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		logger.Info("Cycle schedule active", "spec", cfg.CronSpec)
	}

	// One cycle at startup so a fresh deployment seeds its store right
	// away instead of waiting for the first tick.
	if _, err := orch.RunCycle(ctx); err != nil {
		logger.Error("Startup cycle failed", "error", err)
	}

	srv := server.New(&server.Config{
		Orchestrator: orch,
		Runner:       task,
		Roster:       companyRoster,
		Registry:     registry,
		Counter:      counter,
		Logger:       logger,
		BaseContext:  ctx,
	})
	if err := srv.Start(ctx, cfg.Port); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Shutting down, draining in-flight scrapes", "in_flight", orch.InFlight())
	orch.Wait()
}

// buildSeenStore wires the configured seen-store backend. The returned
// counter is non-nil only for backends that can report per-company
// totals.
func buildSeenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (diff.SeenStore, server.SeenCounter, func(), error) {
	switch cfg.SeenBackend {
	case config.SeenSQLite:
		s, err := storage.NewSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, closeLogged(s.Close, "sqlite store", logger), nil

	case config.SeenGCS:
		// LOCAL_STORAGE switches to a filesystem-backed store for
		// development without a bucket.
		if localPath := os.Getenv("LOCAL_STORAGE"); localPath != "" {
			s, err := storage.NewGCS(nil, "", localPath, logger)
			if err != nil {
				return nil, nil, nil, err
			}
			return s, nil, func() {}, nil
		}
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		s, err := storage.NewGCS(client, cfg.GCSBucket, "", logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, closeLogged(client.Close, "storage client", logger), nil

	case config.SeenRedis:
		s, err := storage.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, closeLogged(s.Close, "redis store", logger), nil

	default:
		return nil, nil, nil, errors.New("unknown seen-store backend " + cfg.SeenBackend)
	}
}

func buildRoster(ctx context.Context, cfg *config.Config, logger *slog.Logger) (roster.Roster, error) {
	switch cfg.RosterBackend {
	case config.RosterFile:
		return roster.NewFile(cfg.RosterPath, logger), nil
	case config.RosterPostgres:
		return roster.NewPostgres(ctx, cfg.DatabaseURL, logger)
	default:
		return nil, errors.New("unknown roster backend " + cfg.RosterBackend)
	}
}

func buildProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (notify.Provider, error) {
	switch cfg.NotifyProvider {
	case config.NotifyNone:
		return nil, nil
	case config.NotifyMock:
		return notify.NewMockProvider(logger), nil
	case config.NotifyGmail:
		service, err := initGmailService(ctx)
		if err != nil {
			return nil, err
		}
		return notify.NewGmailProvider(service, cfg.NotifyTo, logger), nil
	case config.NotifyBrevo:
		return notify.NewBrevoProvider(cfg.BrevoAPIKey, cfg.NotifyFrom, cfg.NotifyTo, logger), nil
	case config.NotifyTelegram:
		return notify.NewTelegramProvider(cfg.TelegramToken, cfg.TelegramChatID, logger)
	default:
		return nil, errors.New("unknown notification provider " + cfg.NotifyProvider)
	}
}

func initGmailService(ctx context.Context) (*gmail.Service, error) {
	// Explicit credentials first, for local development
	if credsJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); credsJSON != "" {
		return gmail.NewService(ctx, option.WithCredentialsJSON([]byte(credsJSON)))
	}

	// On Cloud Run, Application Default Credentials carry the service
	// account. It needs the gmail.send scope.
	if os.Getenv("K_SERVICE") != "" {
		return gmail.NewService(ctx)
	}

	return nil, errors.New("GOOGLE_CREDENTIALS_JSON required when not running in Cloud Run")
}

func closeLogged(closeFn func() error, name string, logger *slog.Logger) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Warn("Failed to close "+name, "error", err)
		}
	}
}

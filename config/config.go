// Package config loads and validates environment variables at startup.
// Fail-fast: if a required combination is missing or malformed, the
// process should exit rather than limp along half-configured.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Seen-store backends.
const (
	SeenSQLite = "sqlite"
	SeenGCS    = "gcs"
	SeenRedis  = "redis"
)

// Roster backends.
const (
	RosterFile     = "file"
	RosterPostgres = "postgres"
)

// Notification providers.
const (
	NotifyNone     = "none"
	NotifyMock     = "mock"
	NotifyGmail    = "gmail"
	NotifyBrevo    = "brevo"
	NotifyTelegram = "telegram"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port string

	SeenBackend string // sqlite | gcs | redis
	SQLitePath  string // seen store path for the sqlite backend
	GCSBucket   string // bucket for the gcs backend
	RedisURL    string // connection URL for the redis backend

	RosterBackend string // file | postgres
	RosterPath    string // YAML roster path for the file backend
	DatabaseURL   string // postgres DSN for the postgres backend

	NotifyProvider string // none | mock | gmail | brevo | telegram
	NotifyTo       string // recipient address for email providers
	NotifyFrom     string // sender address for email providers
	BrevoAPIKey    string
	TelegramToken  string
	TelegramChatID int64

	CronSpec       string // robfig/cron spec for the cycle trigger, empty disables it
	MaxConcurrency int    // concurrent scrape tasks per cycle
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           envOr("PORT", "8080"),
		SeenBackend:    envOr("SEEN_BACKEND", SeenSQLite),
		SQLitePath:     envOr("SQLITE_PATH", "./data/jobalerts.db"),
		GCSBucket:      os.Getenv("STORAGE_BUCKET"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RosterBackend:  envOr("ROSTER_BACKEND", RosterFile),
		RosterPath:     envOr("ROSTER_PATH", "./companies.yml"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		NotifyProvider: envOr("NOTIFY_PROVIDER", NotifyMock),
		NotifyTo:       os.Getenv("NOTIFY_TO"),
		NotifyFrom:     os.Getenv("NOTIFY_FROM"),
		BrevoAPIKey:    os.Getenv("BREVO_API_KEY"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		CronSpec:       envOr("CYCLE_CRON", "0 */6 * * *"),
		MaxConcurrency: 8,
	}

	switch cfg.SeenBackend {
	case SeenSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case SeenGCS:
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("STORAGE_BUCKET is required for the gcs backend")
		}
	case SeenRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	default:
		return nil, fmt.Errorf("unknown SEEN_BACKEND %q", cfg.SeenBackend)
	}

	switch cfg.RosterBackend {
	case RosterFile:
		if cfg.RosterPath == "" {
			return nil, fmt.Errorf("ROSTER_PATH is required for the file backend")
		}
	case RosterPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown ROSTER_BACKEND %q", cfg.RosterBackend)
	}

	switch cfg.NotifyProvider {
	case NotifyNone, NotifyMock:
	case NotifyGmail:
		if cfg.NotifyTo == "" {
			return nil, fmt.Errorf("NOTIFY_TO is required for the gmail provider")
		}
	case NotifyBrevo:
		if cfg.BrevoAPIKey == "" || cfg.NotifyTo == "" || cfg.NotifyFrom == "" {
			return nil, fmt.Errorf("BREVO_API_KEY, NOTIFY_TO and NOTIFY_FROM are required for the brevo provider")
		}
	case NotifyTelegram:
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required for the telegram provider")
		}
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
		cfg.TelegramChatID = chatID
	default:
		return nil, fmt.Errorf("unknown NOTIFY_PROVIDER %q", cfg.NotifyProvider)
	}

	if s := os.Getenv("MAX_CONCURRENCY"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("MAX_CONCURRENCY must be a positive integer, got %q", s)
		}
		cfg.MaxConcurrency = n
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

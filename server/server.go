// Package server handles HTTP endpoints and request routing.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tsrivatsav/Job-Alerts/orchestrate"
	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// Orchestrator interface for triggering and inspecting cycles.
type Orchestrator interface {
	RunCycle(ctx context.Context) (orchestrate.CycleSummary, error)
	InFlight() int64
	Last() (orchestrate.CycleSummary, bool)
}

// Runner interface for scraping a single company on demand.
type Runner interface {
	Run(ctx context.Context, company jobs.Company) (jobs.ScrapeResult, error)
}

// Roster interface for listing the watched companies.
type Roster interface {
	ListActive(ctx context.Context) ([]jobs.Company, error)
}

// Registry interface for listing which companies have adapters.
type Registry interface {
	Companies() []string
}

// SeenCounter is implemented by stores that can report per-company
// totals. Stores without it simply leave the counts out.
type SeenCounter interface {
	CountByCompany(ctx context.Context) (map[string]int, error)
}

// Server handles HTTP requests.
type Server struct {
	orchestrator Orchestrator
	runner       Runner
	roster       Roster
	registry     Registry
	counter      SeenCounter
	logger       *slog.Logger

	// baseCtx outlives requests so triggered cycles are not canceled
	// when the triggering request finishes.
	baseCtx context.Context
}

// Config holds server configuration.
type Config struct {
	Orchestrator Orchestrator
	Runner       Runner
	Roster       Roster
	Registry     Registry
	Counter      SeenCounter // may be nil
	Logger       *slog.Logger
	BaseContext  context.Context
}

// New creates a new HTTP server handler.
func New(cfg *Config) *Server {
	baseCtx := cfg.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Server{
		orchestrator: cfg.Orchestrator,
		runner:       cfg.Runner,
		roster:       cfg.Roster,
		registry:     cfg.Registry,
		counter:      cfg.Counter,
		logger:       cfg.Logger,
		baseCtx:      baseCtx,
	}
}

// Handler returns the route table. Split out from Start so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/cyclez", s.handleCycle)
	mux.HandleFunc("/scrape", s.handleScrape)
	mux.HandleFunc("/companies", s.handleCompanies)
	return mux
}

// Start runs the HTTP server until it fails or ctx is done.
func (s *Server) Start(ctx context.Context, port string) error {
	// Configure server with timeouts to prevent resource exhaustion
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// Package orchestrate runs scrape cycles: read the roster, fan out one
// task per company, let each succeed or fail on its own.
package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
	"github.com/tsrivatsav/Job-Alerts/roster"
	"github.com/tsrivatsav/Job-Alerts/scrape"
)

// Runner executes one company's scrape.
type Runner interface {
	Run(ctx context.Context, company jobs.Company) (jobs.ScrapeResult, error)
}

// AdapterSet reports which companies can be scraped at all.
type AdapterSet interface {
	Has(company string) bool
}

// CycleSummary describes what one cycle triggered. Task outcomes are
// not aggregated here; each task logs its own result.
type CycleSummary struct {
	StartedAt        time.Time `json:"started_at"`
	Triggered        int       `json:"triggered"`
	SkippedNoAdapter int       `json:"skipped_no_adapter"`
}

// Orchestrator fans scrape tasks out across the active roster. Tasks
// are fire-and-forget: RunCycle returns once every company has been
// triggered or skipped, and Wait drains whatever is still running.
type Orchestrator struct {
	roster   roster.Roster
	adapters AdapterSet
	runner   Runner
	sem      *semaphore.Weighted
	logger   *slog.Logger

	wg       sync.WaitGroup
	inFlight atomic.Int64

	mu   sync.Mutex
	last *CycleSummary
}

// New creates an orchestrator running at most maxConcurrency scrapes
// at once.
func New(r roster.Roster, adapters AdapterSet, runner Runner, maxConcurrency int, logger *slog.Logger) *Orchestrator {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Orchestrator{
		roster:   r,
		adapters: adapters,
		runner:   runner,
		sem:      semaphore.NewWeighted(int64(maxConcurrency)),
		logger:   logger,
	}
}

// RunCycle reads the roster and triggers one task per active company.
// A roster read failure aborts the cycle before anything is triggered;
// after that point companies are isolated from each other. ctx should
// outlive the call, it governs the triggered tasks too.
func (o *Orchestrator) RunCycle(ctx context.Context) (CycleSummary, error) {
	summary := CycleSummary{StartedAt: time.Now().UTC()}

	companies, err := o.roster.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("list active companies: %w", err)
	}

	o.logger.Info("Cycle starting", "active_companies", len(companies))

	for _, company := range companies {
		if !o.adapters.Has(company.Name) {
			o.logger.Warn("No adapter for roster company, skipping",
				"company", company.Name,
				"url", company.SourceURL)
			summary.SkippedNoAdapter++
			continue
		}

		summary.Triggered++
		o.wg.Add(1)
		o.inFlight.Add(1)
		go func(c jobs.Company) {
			defer o.wg.Done()
			defer o.inFlight.Add(-1)

			if err := o.sem.Acquire(ctx, 1); err != nil {
				o.logger.Warn("Cycle canceled before scrape could start",
					"company", c.Name,
					"error", err)
				return
			}
			defer o.sem.Release(1)

			result, err := o.runner.Run(ctx, c)
			if err != nil {
				o.logger.Error("Scrape task failed",
					"company", c.Name,
					"unknown_company", scrape.IsUnknownCompany(err),
					"error", err)
				return
			}
			if len(result.NewPostings) > 0 {
				o.logger.Info("New postings found",
					"company", c.Name,
					"new", len(result.NewPostings),
					"total_fetched", result.TotalFetched)
			}
		}(company)
	}

	o.logger.Info("Cycle triggered",
		"triggered", summary.Triggered,
		"skipped_no_adapter", summary.SkippedNoAdapter)

	o.mu.Lock()
	o.last = &summary
	o.mu.Unlock()
	return summary, nil
}

// Wait blocks until every triggered task has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// InFlight returns how many scrape tasks are currently running.
func (o *Orchestrator) InFlight() int64 {
	return o.inFlight.Load()
}

// Last returns the most recent cycle summary, if any cycle has run.
func (o *Orchestrator) Last() (CycleSummary, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return CycleSummary{}, false
	}
	return *o.last, true
}

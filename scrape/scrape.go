// Package scrape runs the per-company pipeline: look up the adapter,
// fetch the current listings, diff them against the seen store, and
// alert on whatever is new.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsrivatsav/Job-Alerts/adapters"
	"github.com/tsrivatsav/Job-Alerts/diff"
	"github.com/tsrivatsav/Job-Alerts/notify"
	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// UnknownCompanyError indicates a roster company with no registered
// adapter. There is nothing to retry; the roster or the registry is
// wrong.
type UnknownCompanyError struct {
	Company string
}

func (e *UnknownCompanyError) Error() string {
	return fmt.Sprintf("no adapter registered for company %q", e.Company)
}

// IsUnknownCompany checks if an error is an UnknownCompanyError.
func IsUnknownCompany(err error) bool {
	var unknown *UnknownCompanyError
	return errors.As(err, &unknown)
}

// FetchError wraps an adapter failure with the company it belongs to.
type FetchError struct {
	Company string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Company, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError checks if an error is a FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// Task runs scrapes for single companies. One Task is shared by the
// cycle orchestrator and the manual trigger endpoint.
type Task struct {
	registry *adapters.Registry
	differ   *diff.Engine
	notifier *notify.Notifier
	logger   *slog.Logger
}

// New creates a scrape task runner.
func New(registry *adapters.Registry, differ *diff.Engine, notifier *notify.Notifier, logger *slog.Logger) *Task {
	return &Task{
		registry: registry,
		differ:   differ,
		notifier: notifier,
		logger:   logger,
	}
}

// Run scrapes one company end to end. A notify failure does not fail
// the run: the postings are already recorded as seen, and failing here
// would make the next cycle re-announce nothing while still losing the
// alert. Store failures do fail the run.
func (t *Task) Run(ctx context.Context, company jobs.Company) (jobs.ScrapeResult, error) {
	result := jobs.ScrapeResult{CompanyName: company.Name}

	fetcher, ok := t.registry.Lookup(company.Name)
	if !ok {
		return result, &UnknownCompanyError{Company: company.Name}
	}

	t.logger.Info("Scraping company", "company", company.Name, "url", company.SourceURL)

	fetched, err := fetcher(ctx, company.SourceURL)
	if err != nil {
		return result, &FetchError{Company: company.Name, Err: err}
	}
	result.TotalFetched = len(fetched)

	fresh, err := t.differ.DiffAndRecord(ctx, company.Name, fetched)
	if err != nil {
		return result, fmt.Errorf("diff %s: %w", company.Name, err)
	}
	result.NewPostings = fresh

	if err := t.notifier.NotifyNewPostings(ctx, company.Name, fresh); err != nil {
		t.logger.Error("Alert delivery failed, postings stay recorded",
			"company", company.Name,
			"new_count", len(fresh),
			"error", err)
	}

	t.logger.Info("Scrape complete",
		"company", company.Name,
		"total_fetched", result.TotalFetched,
		"new", len(fresh))
	return result, nil
}

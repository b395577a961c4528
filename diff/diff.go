// Package diff decides which fetched postings are new. Identity is the
// canonical URL and nothing else: a retitled or relocated posting at a
// known URL is old news, and a posting that disappears and later
// reappears at the same URL stays known forever.
package diff

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// SeenStore persists canonical URLs across cycles. RecordIfNew must be
// atomic: when two tasks race on the same URL, exactly one caller gets
// true. Records are never updated or deleted once written.
type SeenStore interface {
	RecordIfNew(ctx context.Context, rec jobs.SeenPosting) (bool, error)
}

// Engine diffs a fetch result against a seen store.
type Engine struct {
	store  SeenStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a diff engine backed by store.
func New(store SeenStore, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger, now: time.Now}
}

// DiffAndRecord records every fetched posting and returns the novel
// subset in input order. Running it twice on the same input yields new
// postings once and an empty result after that, which is what makes
// overlapping cycles safe. A store failure aborts the diff; partial
// writes are fine because a record-only-no-notify posting simply never
// surfaces again.
func (e *Engine) DiffAndRecord(ctx context.Context, company string, fetched []jobs.Posting) ([]jobs.Posting, error) {
	discovered := e.now().UTC()

	var fresh []jobs.Posting
	for _, p := range fetched {
		if p.CanonicalURL == "" {
			continue
		}
		inserted, err := e.store.RecordIfNew(ctx, jobs.SeenPosting{
			CanonicalURL: p.CanonicalURL,
			CompanyName:  company,
			Title:        p.Title,
			Location:     p.Location,
			DiscoveredAt: discovered,
			Notified:     true,
		})
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", p.CanonicalURL, err)
		}
		if inserted {
			fresh = append(fresh, p)
		}
	}

	e.logger.Debug("Diff complete",
		"company", company,
		"fetched", len(fetched),
		"new", len(fresh))
	return fresh, nil
}

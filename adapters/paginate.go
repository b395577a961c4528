package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// pageFunc fetches one page of results. Pages are 1-based.
type pageFunc func(ctx context.Context, page int) ([]jobs.Posting, error)

// pager drives an adapter's pagination loop to exhaustion. Termination
// policies, any combination of which may apply:
//
//   - empty page: a page with zero results is always the end;
//   - short page: with pageSize set, a page smaller than pageSize is the
//     last one;
//   - no new unique: with stopOnNoNew set, a page contributing zero URLs
//     not already collected ends the loop (guards against servers that
//     ignore the page parameter and resend page 1).
//
// maxPages is a hard ceiling that backstops all of them: a source that
// misbehaves can never keep us looping.
type pager struct {
	maxPages    int
	pageSize    int
	stopOnNoNew bool
	logger      *slog.Logger
}

// collect runs fetch over successive pages, deduping by canonical URL in
// input order. A failure on the first page fails the fetch; a failure on
// a later page ends it with the postings gathered so far; the next
// cycle retries the whole fetch anyway.
func (p pager) collect(ctx context.Context, fetch pageFunc) ([]jobs.Posting, error) {
	if p.maxPages <= 0 {
		return nil, fmt.Errorf("pager: maxPages must be positive")
	}

	seen := make(map[string]bool)
	var out []jobs.Posting

	for page := 1; page <= p.maxPages; page++ {
		batch, err := fetch(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			p.logger.Warn("Page fetch failed mid-pagination, keeping partial results",
				"page", page,
				"collected", len(out),
				"error", err)
			return out, nil
		}

		if len(batch) == 0 {
			break
		}

		added := 0
		for _, posting := range sanitize(batch) {
			if seen[posting.CanonicalURL] {
				continue
			}
			seen[posting.CanonicalURL] = true
			out = append(out, posting)
			added++
		}

		if p.stopOnNoNew && added == 0 {
			p.logger.Debug("Page yielded no new unique postings, stopping", "page", page)
			break
		}
		if p.pageSize > 0 && len(batch) < p.pageSize {
			break
		}
	}

	return out, nil
}

// Package adapters implements the per-site career-page scrapers behind a
// single contract: fetch everything currently listed at a source URL and
// return it as normalized postings. Each adapter owns its own pagination,
// termination, and source-specific filtering; the rest of the pipeline
// only ever sees []jobs.Posting.
package adapters

import (
	"context"
	"net/url"
	"strings"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// Fetcher fetches and extracts every posting currently listed at
// sourceURL. Implementations must return absolute canonical URLs, apply
// their own source-specific filters, dedupe by URL within the fetch,
// and bound their pagination with a hard page ceiling.
type Fetcher func(ctx context.Context, sourceURL string) ([]jobs.Posting, error)

// cleanText collapses whitespace and strips non-breaking spaces.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// absoluteURL resolves href against the origin of base. Already-absolute
// hrefs are returned as-is.
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return u.ResolveReference(ref).String()
}

// containsFold is a case-insensitive substring check.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sanitize drops unusable postings (empty title or URL) and dedupes by
// canonical URL, preserving first-seen order. Sites legitimately repeat
// a posting across filter combinations; one fetch must report it once.
func sanitize(in []jobs.Posting) []jobs.Posting {
	seen := make(map[string]bool, len(in))
	out := make([]jobs.Posting, 0, len(in))
	for _, p := range in {
		p.Title = cleanText(p.Title)
		p.CanonicalURL = strings.TrimSpace(p.CanonicalURL)
		p.Location = cleanText(p.Location)
		if p.Title == "" || p.CanonicalURL == "" {
			continue
		}
		if seen[p.CanonicalURL] {
			continue
		}
		seen[p.CanonicalURL] = true
		out = append(out, p)
	}
	return out
}

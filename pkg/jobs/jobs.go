// Package jobs contains the core domain types for the job-alerts service.
package jobs

import "time"

// Posting is one normalized job listing as emitted by a site adapter.
// CanonicalURL is the sole identity: two postings with the same URL are
// the same posting even if the title or location differ.
type Posting struct {
	Title        string `json:"title"`
	CanonicalURL string `json:"url"`
	Location     string `json:"location,omitempty"`
}

// Company is one watched entry from the roster.
type Company struct {
	Name      string `json:"name" yaml:"name"`
	SourceURL string `json:"url" yaml:"url"`
	Active    bool   `json:"active" yaml:"active"`
}

// SeenPosting is the write-once record kept for every posting ever
// observed. Records are never updated or expired.
type SeenPosting struct {
	CanonicalURL string    `json:"url"`
	CompanyName  string    `json:"company_name"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	DiscoveredAt time.Time `json:"discovered_at"`
	Notified     bool      `json:"notified"`
}

// ScrapeResult summarizes one scrape task invocation. It is transient:
// it exists to drive the notifier and the caller's response.
type ScrapeResult struct {
	CompanyName  string    `json:"company"`
	TotalFetched int       `json:"total_jobs"`
	NewPostings  []Posting `json:"-"`
}

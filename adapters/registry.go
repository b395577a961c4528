package adapters

import "sort"

// Registry maps company names from the roster to their fetchers.
// Companies on a shared applicant tracking system reuse one adapter;
// the roster URL tells the adapter which board to query.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds the default registry covering every company the
// watcher knows how to scrape.
func NewRegistry(c *Client) *Registry {
	greenhouse := Greenhouse(c)
	lever := Lever(c)
	ashby := Ashby(c)

	return &Registry{fetchers: map[string]Fetcher{
		"Anthropic":   Anthropic(c),
		"OpenAI":      OpenAI(c),
		"Jane Street": JaneStreet(c),
		"Amazon":      Amazon(c),

		"DeepMind":    greenhouse,
		"xAI":         greenhouse,
		"Figure AI":   greenhouse,
		"Together AI": greenhouse,

		"Mistral": lever,

		"Cohere":     ashby,
		"Perplexity": ashby,
	}}
}

// Lookup returns the fetcher for a company, or false when the company
// has no adapter.
func (r *Registry) Lookup(company string) (Fetcher, bool) {
	f, ok := r.fetchers[company]
	return f, ok
}

// Has reports whether an adapter exists for the company.
func (r *Registry) Has(company string) bool {
	_, ok := r.fetchers[company]
	return ok
}

// Companies lists every registered company name, sorted.
func (r *Registry) Companies() []string {
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

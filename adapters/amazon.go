package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

const (
	amazonPageSize = 10
	amazonMaxPages = 10
)

type amazonSearchResponse struct {
	Jobs []amazonJob `json:"jobs"`
}

type amazonJob struct {
	Title              string `json:"title"`
	JobPath            string `json:"job_path"`
	Location           string `json:"location"`
	NormalizedLocation string `json:"normalized_location"`
}

// Amazon fetches amazon.jobs search results via the search.json API,
// stepping the offset parameter through up to amazonMaxPages pages. The
// roster URL's query string (category, business unit, starting offset)
// is carried over into the API calls, so operators narrow the search by
// editing the roster, not the code.
func Amazon(c *Client) Fetcher {
	return func(ctx context.Context, sourceURL string) ([]jobs.Posting, error) {
		parsed, err := url.Parse(sourceURL)
		if err != nil {
			return nil, fmt.Errorf("parse source url: %w", err)
		}

		apiURL := fmt.Sprintf("%s://%s/en/search.json", parsed.Scheme, parsed.Host)
		params := url.Values{}
		for k, vals := range parsed.Query() {
			if len(vals) > 0 {
				params.Set(k, vals[0])
			}
		}
		params.Set("result_limit", strconv.Itoa(amazonPageSize))

		startOffset := 0
		if v := params.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				startOffset = n
			}
		}

		p := pager{maxPages: amazonMaxPages, pageSize: amazonPageSize, logger: c.logger}
		return p.collect(ctx, func(ctx context.Context, page int) ([]jobs.Posting, error) {
			offset := startOffset + (page-1)*amazonPageSize
			params.Set("offset", strconv.Itoa(offset))

			var resp amazonSearchResponse
			if err := c.getJSON(ctx, apiURL+"?"+params.Encode(), &resp); err != nil {
				return nil, fmt.Errorf("offset %d: %w", offset, err)
			}

			out := make([]jobs.Posting, 0, len(resp.Jobs))
			for _, j := range resp.Jobs {
				loc := j.NormalizedLocation
				if loc == "" {
					loc = j.Location
				}
				out = append(out, jobs.Posting{
					Title:        j.Title,
					CanonicalURL: absoluteURL(sourceURL, j.JobPath),
					Location:     loc,
				})
			}
			return out, nil
		})
	}
}

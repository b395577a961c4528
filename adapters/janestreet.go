package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

type janeStreetPosition struct {
	ID           json.Number `json:"id"`
	Position     string      `json:"position"`
	City         string      `json:"city"`
	Availability string      `json:"availability"`
}

// JaneStreet fetches the janestreet.com positions feed (main.json) and
// keeps only experienced full-time NYC roles, the filter the watcher
// actually cares about. Filtering is part of this adapter's contract.
func JaneStreet(c *Client) Fetcher {
	return func(ctx context.Context, sourceURL string) ([]jobs.Posting, error) {
		var positions []janeStreetPosition
		if err := c.getJSON(ctx, sourceURL, &positions); err != nil {
			return nil, err
		}

		var out []jobs.Posting
		for _, p := range positions {
			if p.City != "NYC" || p.Availability != "Full-Time: Experienced" {
				continue
			}
			out = append(out, jobs.Posting{
				Title:        p.Position,
				CanonicalURL: fmt.Sprintf("https://www.janestreet.com/join-jane-street/position/%s/", p.ID.String()),
				Location:     p.City,
			})
		}

		return sanitize(out), nil
	}
}

package adapters

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// leverLocations, when non-empty, keeps only postings whose location
// contains one of the substrings. Mistral is watched for its Palo Alto
// and New York offices only.
var leverLocations = []string{"Palo Alto", "New York"}

// Lever scrapes a hosted jobs.lever.co board: a.posting-title anchors
// with the title in an h5 and the location in a span. Boards are single
// pages; Lever renders the full list at once.
func Lever(c *Client) Fetcher {
	return func(ctx context.Context, sourceURL string) ([]jobs.Posting, error) {
		doc, err := c.getDocument(ctx, sourceURL)
		if err != nil {
			return nil, err
		}

		var out []jobs.Posting
		doc.Find("a.posting-title").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}

			title := cleanText(a.Find("h5[data-qa='posting-name']").First().Text())
			loc := cleanText(a.Find("span[class*='location']").First().Text())
			if !locationAllowed(loc, leverLocations) {
				return
			}

			out = append(out, jobs.Posting{
				Title:        title,
				CanonicalURL: absoluteURL(sourceURL, href),
				Location:     loc,
			})
		})

		return sanitize(out), nil
	}
}

func locationAllowed(loc string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, want := range allowed {
		if loc != "" && containsFold(loc, want) {
			return true
		}
	}
	return false
}

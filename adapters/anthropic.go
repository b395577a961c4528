package adapters

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// Anthropic scrapes the anthropic.com careers page. Listings are anchors
// pointing at /careers/jobs/..., with the title and location in nested
// jobRole / jobLocation divs.
func Anthropic(c *Client) Fetcher {
	return func(ctx context.Context, sourceURL string) ([]jobs.Posting, error) {
		doc, err := c.getDocument(ctx, sourceURL)
		if err != nil {
			return nil, err
		}

		var out []jobs.Posting
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !strings.HasPrefix(href, "/careers/jobs/") {
				return
			}

			title := cleanText(a.Find("div[class*='jobRole'] p").First().Text())
			if title == "" {
				return // malformed row, skip rather than fail the fetch
			}

			out = append(out, jobs.Posting{
				Title:        title,
				CanonicalURL: absoluteURL(sourceURL, href),
				Location:     cleanText(a.Find("div[class*='jobLocation'] p").First().Text()),
			})
		})

		return sanitize(out), nil
	}
}

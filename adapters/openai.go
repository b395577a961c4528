package adapters

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// OpenAI scrapes the openai.com careers page: anchors under /careers/
// (excluding the search page itself) with an h2 title and the location
// in a direct-child span.
func OpenAI(c *Client) Fetcher {
	return func(ctx context.Context, sourceURL string) ([]jobs.Posting, error) {
		doc, err := c.getDocument(ctx, sourceURL)
		if err != nil {
			return nil, err
		}

		var out []jobs.Posting
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !strings.HasPrefix(href, "/careers/") || strings.Contains(href, "/careers/search") {
				return
			}

			title := cleanText(a.Find("h2").First().Text())
			if title == "" {
				return
			}

			out = append(out, jobs.Posting{
				Title:        title,
				CanonicalURL: absoluteURL(sourceURL, href),
				Location:     cleanText(a.ChildrenFiltered("span").First().Text()),
			})
		})

		return sanitize(out), nil
	}
}

package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

const greenhouseMaxPages = 20

// Greenhouse scrapes a hosted job-boards.greenhouse.io board. One
// adapter covers every company on the platform (DeepMind, xAI, Figure
// AI, Together AI, ...): the roster URL is the board, rows are
// tr.job-post, and later pages hang off ?page=N. Some tenants ignore
// the page parameter and resend page 1 forever, hence the
// no-new-unique guard on top of empty-page termination.
func Greenhouse(c *Client) Fetcher {
	return func(ctx context.Context, sourceURL string) ([]jobs.Posting, error) {
		baseURL := sourceURL
		if i := strings.Index(baseURL, "?"); i >= 0 {
			baseURL = baseURL[:i]
		}

		p := pager{maxPages: greenhouseMaxPages, stopOnNoNew: true, logger: c.logger}
		return p.collect(ctx, func(ctx context.Context, page int) ([]jobs.Posting, error) {
			pageURL := baseURL
			if page > 1 {
				pageURL = fmt.Sprintf("%s?page=%d", baseURL, page)
			}

			doc, err := c.getDocument(ctx, pageURL)
			if err != nil {
				return nil, err
			}

			var out []jobs.Posting
			doc.Find("tr.job-post").Each(func(_ int, row *goquery.Selection) {
				link := row.Find("a[href]").First()
				href, ok := link.Attr("href")
				if !ok {
					return
				}
				out = append(out, jobs.Posting{
					Title:        cleanText(link.Find("p.body--medium").First().Text()),
					CanonicalURL: absoluteURL(baseURL, href),
					Location:     cleanText(link.Find("p.body--metadata").First().Text()),
				})
			})
			return out, nil
		})
	}
}

package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

const ashbyGraphqlURL = "https://jobs.ashbyhq.com/api/non-user-graphql?op=ApiJobBoardWithTeams"

// The board query Ashby's own frontend issues; no auth needed.
const ashbyBoardQuery = `query ApiJobBoardWithTeams($organizationHostedJobsPageName: String!) {
  jobBoard: jobBoardWithTeams(organizationHostedJobsPageName: $organizationHostedJobsPageName) {
    jobPostings {
      id
      title
      locationName
      workplaceType
    }
  }
}`

type ashbyRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type ashbyResponse struct {
	Data struct {
		JobBoard struct {
			JobPostings []struct {
				ID            string `json:"id"`
				Title         string `json:"title"`
				LocationName  string `json:"locationName"`
				WorkplaceType string `json:"workplaceType"`
			} `json:"jobPostings"`
		} `json:"jobBoard"`
	} `json:"data"`
}

// Ashby queries the jobs.ashbyhq.com GraphQL board API. One adapter
// covers every company hosted there (Cohere, Perplexity, ...); the
// organization name is the path of the roster URL.
func Ashby(c *Client) Fetcher {
	return func(ctx context.Context, sourceURL string) ([]jobs.Posting, error) {
		org, err := ashbyOrg(sourceURL)
		if err != nil {
			return nil, err
		}

		req := ashbyRequest{
			OperationName: "ApiJobBoardWithTeams",
			Query:         ashbyBoardQuery,
			Variables:     map[string]any{"organizationHostedJobsPageName": org},
		}
		var resp ashbyResponse
		if err := c.postJSON(ctx, ashbyGraphqlURL, req, &resp); err != nil {
			return nil, err
		}

		postings := resp.Data.JobBoard.JobPostings
		out := make([]jobs.Posting, 0, len(postings))
		for _, p := range postings {
			loc := p.LocationName
			if loc == "" && p.WorkplaceType == "Remote" {
				loc = "Remote"
			}
			out = append(out, jobs.Posting{
				Title:        p.Title,
				CanonicalURL: fmt.Sprintf("https://jobs.ashbyhq.com/%s/%s", org, p.ID),
				Location:     loc,
			})
		}

		return sanitize(out), nil
	}
}

func ashbyOrg(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}
	org := strings.Trim(u.Path, "/")
	if org == "" || strings.Contains(org, "/") {
		return "", fmt.Errorf("cannot derive ashby organization from %q", sourceURL)
	}
	return org, nil
}

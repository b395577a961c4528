package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	// Generous pacing so multi-page tests do not sleep.
	c.limiter = newHostLimiter(1000, 1000)
	return c
}

func TestAnthropicParsesListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/careers/jobs/12345">
				<div class="jobRole_abc"><p>Software Engineer</p></div>
				<div class="jobLocation_xyz"><p>San Francisco, CA</p></div>
			</a>
			<a href="/careers/jobs/67890">
				<div class="jobRole_abc"><p>Research Scientist</p></div>
				<div class="jobLocation_xyz"><p>London, UK</p></div>
			</a>
			<a href="/about">Not a job</a>
		</body></html>`)
	}))
	defer srv.Close()

	got, err := Anthropic(testClient(t))(context.Background(), srv.URL+"/careers")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d postings, want 2: %+v", len(got), got)
	}
	want := jobs.Posting{
		Title:        "Software Engineer",
		CanonicalURL: srv.URL + "/careers/jobs/12345",
		Location:     "San Francisco, CA",
	}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestGreenhouseStopsWhenServerRepeatsPageOne(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		// The page parameter is ignored: every request gets the same rows.
		fmt.Fprint(w, `<html><body><table>
			<tr class="job-post"><td><a href="/jobs/1">
				<p class="body--medium">Engineer</p>
				<p class="body--metadata">Mountain View</p>
			</a></td></tr>
			<tr class="job-post"><td><a href="/jobs/2">
				<p class="body--medium">Researcher</p>
				<p class="body--metadata">London</p>
			</a></td></tr>
		</table></body></html>`)
	}))
	defer srv.Close()

	got, err := Greenhouse(testClient(t))(context.Background(), srv.URL+"/boards/deepmind?utm_source=x")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d postings, want 2", len(got))
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2 (page 1 plus one repeat)", requests)
	}
	if got[0].Title != "Engineer" || got[0].Location != "Mountain View" {
		t.Errorf("unexpected first posting: %+v", got[0])
	}
}

func TestJaneStreetFiltersExperiencedNYC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"id": 4001, "position": "Trader", "city": "NYC", "availability": "Full-Time: Experienced"},
			{"id": 4002, "position": "Intern", "city": "NYC", "availability": "Internship"},
			{"id": 4003, "position": "Developer", "city": "LDN", "availability": "Full-Time: Experienced"}
		]`)
	}))
	defer srv.Close()

	got, err := JaneStreet(testClient(t))(context.Background(), srv.URL+"/main.json")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d postings, want 1: %+v", len(got), got)
	}
	want := jobs.Posting{
		Title:        "Trader",
		CanonicalURL: "https://www.janestreet.com/join-jane-street/position/4001/",
		Location:     "NYC",
	}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestAmazonStepsOffsetUntilShortPage(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)

		n := amazonPageSize
		if offset == "10" {
			n = 3 // short page ends the walk
		}
		fmt.Fprint(w, `{"jobs": [`)
		for i := 0; i < n; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"title": "SDE %s-%d", "job_path": "/en/jobs/%s-%d", "normalized_location": "Seattle, WA"}`, offset, i, offset, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	got, err := Amazon(testClient(t))(context.Background(), srv.URL+"/en/search?category=software-development&offset=0")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 13 {
		t.Errorf("got %d postings, want 13", len(got))
	}
	if len(offsets) != 2 || offsets[0] != "0" || offsets[1] != "10" {
		t.Errorf("got offsets %v, want [0 10]", offsets)
	}
	if got[0].Location != "Seattle, WA" {
		t.Errorf("got location %q, want Seattle, WA", got[0].Location)
	}
}

func TestAshbyBuildsPostingURLs(t *testing.T) {
	// The adapter always POSTs to the real Ashby endpoint, so exercise the
	// slug derivation and response mapping separately.
	org, err := ashbyOrg("https://jobs.ashbyhq.com/cohere")
	if err != nil {
		t.Fatalf("ashbyOrg: %v", err)
	}
	if org != "cohere" {
		t.Errorf("got org %q, want cohere", org)
	}
	if _, err := ashbyOrg("https://jobs.ashbyhq.com/"); err == nil {
		t.Error("expected an error for a URL with no organization path")
	}
}

func TestClientSurfacesBlockAsBlockedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(t).get(context.Background(), srv.URL, "text/html")
	if !IsBlocked(err) {
		t.Errorf("got %v, want a BlockedError", err)
	}
}

func TestClientDetectsCloudflareChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Attention Required! | Cloudflare</title></head>
			<body><script src="/cdn-cgi/challenge-platform/main.js"></script></body></html>`)
	}))
	defer srv.Close()

	_, err := testClient(t).get(context.Background(), srv.URL, "text/html")
	if !IsBlocked(err) {
		t.Errorf("got %v, want a BlockedError for a challenge page served with HTTP 200", err)
	}
}

func TestSanitizeDropsInvalidAndDuplicates(t *testing.T) {
	in := []jobs.Posting{
		{Title: "A", CanonicalURL: "https://x.test/1"},
		{Title: "", CanonicalURL: "https://x.test/2"},
		{Title: "C", CanonicalURL: ""},
		{Title: "A again", CanonicalURL: "https://x.test/1"},
		{Title: "D", CanonicalURL: "https://x.test/3"},
	}
	got := sanitize(in)
	if len(got) != 2 {
		t.Fatalf("got %d postings, want 2: %+v", len(got), got)
	}
	if got[0].CanonicalURL != "https://x.test/1" || got[1].CanonicalURL != "https://x.test/3" {
		t.Errorf("wrong postings kept: %+v", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"relative path", "https://x.test/careers", "/careers/jobs/1", "https://x.test/careers/jobs/1"},
		{"already absolute", "https://x.test/careers", "https://y.test/jobs/2", "https://y.test/jobs/2"},
		{"unparseable href", "https://x.test", "://bad", "://bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := absoluteURL(tt.base, tt.href); got != tt.want {
				t.Errorf("absoluteURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

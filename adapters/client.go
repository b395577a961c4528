package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/retry"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20 // career pages are small; anything bigger is wrong
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// BlockedError indicates the source served an anti-bot block (403/429 or
// a Cloudflare challenge page) instead of listings. It is surfaced as its
// own kind so operators can tell "site has no openings" from "site is
// refusing us".
type BlockedError struct {
	URL        string
	StatusCode int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by source (HTTP %d): %s", e.StatusCode, e.URL)
}

// IsBlocked checks if an error is a BlockedError.
func IsBlocked(err error) bool {
	var blocked *BlockedError
	return errors.As(err, &blocked)
}

// Client is the shared HTTP layer under every adapter: Chrome-like
// headers, per-host pacing, bounded retries, and block-page detection.
// Adapters are read-only with respect to it, so one instance is safe to
// share across concurrent scrape tasks.
type Client struct {
	hc      *http.Client
	limiter *hostLimiter
	logger  *slog.Logger
}

// NewClient creates a client that paces requests per hostname to stay
// polite with paginated sources.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		hc:      &http.Client{Timeout: requestTimeout},
		limiter: newHostLimiter(1.0, 2),
		logger:  logger,
	}
}

// get fetches rawURL and returns the response body. Transport errors are
// retried a few times; block responses and other 4xx are not.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, accept, "", nil)
}

// post sends body with the given content type and returns the response.
func (c *Client) post(ctx context.Context, rawURL, accept, contentType string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, rawURL, accept, contentType, body)
}

func (c *Client) do(ctx context.Context, method, rawURL, accept, contentType string, body []byte) ([]byte, error) {
	var data []byte

	err := retry.Do(
		func() error {
			if err := c.limiter.waitURL(ctx, rawURL); err != nil {
				return retry.Unrecoverable(err)
			}

			var reqBody io.Reader = http.NoBody
			if body != nil {
				reqBody = strings.NewReader(string(body))
			}
			req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("User-Agent", userAgent)
			req.Header.Set("Accept", accept)
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}

			startTime := time.Now()
			resp, err := c.hc.Do(req)
			duration := time.Since(startTime)
			if err != nil {
				c.logger.Warn("HTTP request failed, will retry",
					"method", method,
					"url", rawURL,
					"duration_ms", duration.Milliseconds(),
					"error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					c.logger.Warn("Failed to close response body", "error", closeErr)
				}
			}()

			b, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if readErr != nil {
				return fmt.Errorf("read body: %w", readErr)
			}

			if looksBlocked(resp, b) {
				c.logger.Warn("Source appears to be blocking us",
					"url", rawURL,
					"status_code", resp.StatusCode)
				return retry.Unrecoverable(&BlockedError{URL: rawURL, StatusCode: resp.StatusCode})
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("HTTP %d", resp.StatusCode))
			}

			c.logger.Debug("HTTP request completed",
				"method", method,
				"url", rawURL,
				"status_code", resp.StatusCode,
				"duration_ms", duration.Milliseconds(),
				"bytes", len(b))

			data = b
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("Retrying fetch after error", "attempt", n, "url", rawURL, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// getDocument fetches rawURL and parses it as HTML.
func (c *Client) getDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := c.get(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// getJSON fetches rawURL and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.get(ctx, rawURL, "application/json, text/plain, */*")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// postJSON sends payload as JSON and decodes the JSON response into v.
func (c *Client) postJSON(ctx context.Context, rawURL string, payload, v any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	body, err := c.post(ctx, rawURL, "application/json", "application/json", b)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// looksBlocked reports whether the response smells like an anti-bot
// block rather than a real answer: 403/429, or Cloudflare challenge
// markers in the first chunk of the body.
func looksBlocked(resp *http.Response, body []byte) bool {
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return true
	}

	preview := body
	if len(preview) > 4096 {
		preview = preview[:4096]
	}
	low := strings.ToLower(string(preview))
	if strings.Contains(low, "/cdn-cgi/") && strings.Contains(low, "cloudflare") {
		return true
	}
	if strings.Contains(low, "checking your browser") ||
		(strings.Contains(low, "attention required") && strings.Contains(low, "cloudflare")) {
		return true
	}
	return false
}

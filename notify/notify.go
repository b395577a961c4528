// Package notify delivers new-posting alerts via pluggable providers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// Provider defines the interface for alert delivery implementations.
// The recipient is part of the provider's configuration, not the call.
type Provider interface {
	// Send delivers one alert message.
	Send(ctx context.Context, subject, body string) error
}

// Notifier formats and sends alerts about new postings using a
// pluggable provider. A nil provider turns notification into a logged
// no-op, which is how record-only deployments run.
type Notifier struct {
	provider Provider
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a notifier with the given provider. provider may be nil.
func New(provider Provider, logger *slog.Logger) *Notifier {
	return &Notifier{provider: provider, logger: logger, now: time.Now}
}

// NotifyNewPostings sends one alert covering every new posting found at
// company this cycle. Nothing is sent when there is nothing new.
func (n *Notifier) NotifyNewPostings(ctx context.Context, company string, postings []jobs.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	subject := Subject(company, len(postings))
	if n.provider == nil {
		n.logger.Info("No notification provider configured, skipping alert",
			"company", company,
			"new_count", len(postings))
		return nil
	}

	n.logger.Info("Sending new-postings alert",
		"company", company,
		"subject", subject,
		"new_count", len(postings))

	if err := n.provider.Send(ctx, subject, n.formatBody(company, postings)); err != nil {
		return fmt.Errorf("send alert for %s: %w", company, err)
	}
	return nil
}

// Subject builds the alert subject line.
func Subject(company string, count int) string {
	return fmt.Sprintf("🆕 %d New Job(s) at %s", count, company)
}

func (n *Notifier) formatBody(company string, postings []jobs.Posting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new job posting(s) found at %s:\n\n", len(postings), company)
	for _, p := range postings {
		fmt.Fprintf(&b, "• %s\n  %s\n", p.Title, p.CanonicalURL)
		if p.Location != "" {
			fmt.Fprintf(&b, "  %s\n", p.Location)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Discovered at %s.\n", n.now().UTC().Format(time.RFC3339))
	return b.String()
}

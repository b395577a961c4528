package notify

import (
	"context"
	"log/slog"
)

// MockProvider is a mock alert provider for local development.
type MockProvider struct {
	logger *slog.Logger
}

// NewMockProvider creates a new mock alert provider.
func NewMockProvider(logger *slog.Logger) *MockProvider {
	return &MockProvider{
		logger: logger,
	}
}

// Send logs the alert instead of sending it.
func (m *MockProvider) Send(_ context.Context, subject, body string) error {
	m.logger.Info("MOCK ALERT",
		"subject", subject,
		"body_length", len(body))
	return nil
}

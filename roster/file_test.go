package roster

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileRosterFiltersInactive(t *testing.T) {
	path := writeRoster(t, `
companies:
  - name: Anthropic
    url: https://www.anthropic.com/careers
    active: true
  - name: OpenAI
    url: https://openai.com/careers/search
    active: false
  - name: Jane Street
    url: https://www.janestreet.com/jobs/main.json
    active: true
`)

	got, err := NewFile(path, discard()).ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d companies, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Anthropic" || got[1].Name != "Jane Street" {
		t.Errorf("got %+v, want Anthropic then Jane Street in file order", got)
	}
}

func TestFileRosterRejectsIncompleteEntries(t *testing.T) {
	path := writeRoster(t, `
companies:
  - name: Anthropic
    active: true
`)
	if _, err := NewFile(path, discard()).ListActive(context.Background()); err == nil {
		t.Error("expected an error for an entry without a url")
	}
}

func TestFileRosterMissingFile(t *testing.T) {
	r := NewFile(filepath.Join(t.TempDir(), "nope.yml"), discard())
	if _, err := r.ListActive(context.Background()); err == nil {
		t.Error("expected an error for a missing roster file")
	}
}

func TestFileRosterRereadsOnEachCall(t *testing.T) {
	path := writeRoster(t, `
companies:
  - name: Anthropic
    url: https://www.anthropic.com/careers
    active: true
`)
	r := NewFile(path, discard())

	got, err := r.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d companies, want 1", len(got))
	}

	if err := os.WriteFile(path, []byte(`
companies:
  - name: Anthropic
    url: https://www.anthropic.com/careers
    active: false
`), 0o600); err != nil {
		t.Fatalf("rewrite roster: %v", err)
	}

	got, err = r.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive after edit: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d companies after deactivation, want 0", len(got))
	}
}

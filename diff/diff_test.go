package diff

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

type memStore struct {
	seen    map[string]jobs.SeenPosting
	failURL string
}

func newMemStore() *memStore {
	return &memStore{seen: make(map[string]jobs.SeenPosting)}
}

func (m *memStore) RecordIfNew(_ context.Context, rec jobs.SeenPosting) (bool, error) {
	if rec.CanonicalURL == m.failURL {
		return false, errors.New("store unavailable")
	}
	if _, ok := m.seen[rec.CanonicalURL]; ok {
		return false, nil
	}
	m.seen[rec.CanonicalURL] = rec
	return true, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiffAndRecordIsIdempotent(t *testing.T) {
	e := New(newMemStore(), discard())
	fetched := []jobs.Posting{
		{Title: "Engineer", CanonicalURL: "https://x.test/1"},
		{Title: "Designer", CanonicalURL: "https://x.test/2"},
	}

	first, err := e.DiffAndRecord(context.Background(), "Acme", fetched)
	if err != nil {
		t.Fatalf("first diff: %v", err)
	}
	if len(first) != 2 {
		t.Errorf("first diff returned %d postings, want 2", len(first))
	}

	second, err := e.DiffAndRecord(context.Background(), "Acme", fetched)
	if err != nil {
		t.Fatalf("second diff: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second diff returned %d postings, want 0", len(second))
	}
}

func TestDiffAndRecordPreservesInputOrder(t *testing.T) {
	store := newMemStore()
	store.seen["https://x.test/b"] = jobs.SeenPosting{CanonicalURL: "https://x.test/b"}

	e := New(store, discard())
	got, err := e.DiffAndRecord(context.Background(), "Acme", []jobs.Posting{
		{Title: "C", CanonicalURL: "https://x.test/c"},
		{Title: "B", CanonicalURL: "https://x.test/b"},
		{Title: "A", CanonicalURL: "https://x.test/a"},
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(got) != 2 || got[0].Title != "C" || got[1].Title != "A" {
		t.Errorf("got %+v, want C then A in input order", got)
	}
}

func TestDiffIdentityIsURLOnly(t *testing.T) {
	store := newMemStore()
	e := New(store, discard())

	if _, err := e.DiffAndRecord(context.Background(), "Acme", []jobs.Posting{
		{Title: "Engineer", CanonicalURL: "https://x.test/1", Location: "NYC"},
	}); err != nil {
		t.Fatalf("diff: %v", err)
	}

	// Same URL, different title and location: not new.
	got, err := e.DiffAndRecord(context.Background(), "Acme", []jobs.Posting{
		{Title: "Senior Engineer", CanonicalURL: "https://x.test/1", Location: "SF"},
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("retitled posting at a known URL reported as new: %+v", got)
	}
}

func TestDiffRecordsMetadata(t *testing.T) {
	store := newMemStore()
	e := New(store, discard())
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	if _, err := e.DiffAndRecord(context.Background(), "Acme", []jobs.Posting{
		{Title: "Engineer", CanonicalURL: "https://x.test/1", Location: "NYC"},
	}); err != nil {
		t.Fatalf("diff: %v", err)
	}

	rec := store.seen["https://x.test/1"]
	if rec.CompanyName != "Acme" || rec.Title != "Engineer" || rec.Location != "NYC" {
		t.Errorf("record missing posting fields: %+v", rec)
	}
	if !rec.Notified {
		t.Error("record not marked notified")
	}
	if !rec.DiscoveredAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("got DiscoveredAt %v", rec.DiscoveredAt)
	}
}

func TestDiffStoreFailurePropagates(t *testing.T) {
	store := newMemStore()
	store.failURL = "https://x.test/2"
	e := New(store, discard())

	_, err := e.DiffAndRecord(context.Background(), "Acme", []jobs.Posting{
		{Title: "A", CanonicalURL: "https://x.test/1"},
		{Title: "B", CanonicalURL: "https://x.test/2"},
	})
	if err == nil {
		t.Fatal("expected an error when the store fails")
	}
	// The posting recorded before the failure stays recorded.
	if _, ok := store.seen["https://x.test/1"]; !ok {
		t.Error("posting recorded before the failure was lost")
	}
}

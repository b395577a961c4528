package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "seen.db"), discard())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return s
}

func TestSQLiteRecordIfNew(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	rec := jobs.SeenPosting{
		CanonicalURL: "https://x.test/jobs/1",
		CompanyName:  "Acme",
		Title:        "Engineer",
		Location:     "NYC",
		DiscoveredAt: time.Now().UTC(),
		Notified:     true,
	}

	inserted, err := s.RecordIfNew(ctx, rec)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if !inserted {
		t.Error("first record reported not inserted")
	}

	inserted, err = s.RecordIfNew(ctx, rec)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if inserted {
		t.Error("duplicate URL reported as inserted")
	}
}

func TestSQLiteIdentityIgnoresMetadata(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	if _, err := s.RecordIfNew(ctx, jobs.SeenPosting{
		CanonicalURL: "https://x.test/jobs/1",
		CompanyName:  "Acme",
		Title:        "Engineer",
		DiscoveredAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	inserted, err := s.RecordIfNew(ctx, jobs.SeenPosting{
		CanonicalURL: "https://x.test/jobs/1",
		CompanyName:  "Acme",
		Title:        "Senior Engineer",
		Location:     "Remote",
		DiscoveredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if inserted {
		t.Error("same URL with different metadata reported as new")
	}
}

func TestSQLiteCountByCompany(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	for _, rec := range []jobs.SeenPosting{
		{CanonicalURL: "https://a.test/1", CompanyName: "Acme", Title: "A", DiscoveredAt: time.Now()},
		{CanonicalURL: "https://a.test/2", CompanyName: "Acme", Title: "B", DiscoveredAt: time.Now()},
		{CanonicalURL: "https://b.test/1", CompanyName: "Globex", Title: "C", DiscoveredAt: time.Now()},
	} {
		if _, err := s.RecordIfNew(ctx, rec); err != nil {
			t.Fatalf("record %s: %v", rec.CanonicalURL, err)
		}
	}

	counts, err := s.CountByCompany(ctx)
	if err != nil {
		t.Fatalf("CountByCompany: %v", err)
	}
	if counts["Acme"] != 2 || counts["Globex"] != 1 {
		t.Errorf("got counts %v, want Acme=2 Globex=1", counts)
	}
}

func TestGCSLocalFallbackRecordIfNew(t *testing.T) {
	s, err := NewGCS(nil, "", t.TempDir(), discard())
	if err != nil {
		t.Fatalf("NewGCS: %v", err)
	}
	ctx := context.Background()

	rec := jobs.SeenPosting{
		CanonicalURL: "https://x.test/jobs/1",
		CompanyName:  "Acme",
		Title:        "Engineer",
		DiscoveredAt: time.Now().UTC(),
		Notified:     true,
	}

	inserted, err := s.RecordIfNew(ctx, rec)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if !inserted {
		t.Error("first record reported not inserted")
	}

	inserted, err = s.RecordIfNew(ctx, rec)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if inserted {
		t.Error("duplicate URL reported as inserted")
	}
}

// Package storage persists which postings have already been seen. Every
// backend exposes the same atomic record-if-absent primitive keyed on
// canonical URL; records are written once and never mutated.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS seen_postings (
	url           TEXT PRIMARY KEY,
	company_name  TEXT NOT NULL,
	title         TEXT NOT NULL,
	location      TEXT NOT NULL DEFAULT '',
	discovered_at TIMESTAMP NOT NULL,
	notified      INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_seen_company ON seen_postings(company_name);
`

// SQLiteStore is the default local backend: one row per canonical URL,
// INSERT OR IGNORE for the record-if-absent semantics.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("Failed to close database after migration error", "error", closeErr)
		}
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger.Info("SQLite seen store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// RecordIfNew inserts rec and reports whether the URL was unseen. A
// second insert for the same URL is a no-op, so concurrent tasks racing
// on one URL resolve to exactly one true.
func (s *SQLiteStore) RecordIfNew(ctx context.Context, rec jobs.SeenPosting) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_postings (url, company_name, title, location, discovered_at, notified)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.CanonicalURL, rec.CompanyName, rec.Title, rec.Location, rec.DiscoveredAt, rec.Notified)
	if err != nil {
		return false, fmt.Errorf("insert seen posting: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// CountByCompany returns how many postings have been recorded per
// company, for the status endpoints.
func (s *SQLiteStore) CountByCompany(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company_name, COUNT(*) FROM seen_postings GROUP BY company_name`)
	if err != nil {
		return nil, fmt.Errorf("count seen postings: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("Failed to close rows", "error", closeErr)
		}
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var company string
		var n int
		if err := rows.Scan(&company, &n); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[company] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return counts, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

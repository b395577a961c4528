package roster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// PostgresRoster reads the watched companies from a `companies` table.
// Shared deployments flip companies on and off with a single UPDATE
// instead of shipping a new roster file.
type PostgresRoster struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects to databaseURL and verifies the connection.
func NewPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresRoster, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("Postgres roster ready")
	return &PostgresRoster{pool: pool, logger: logger}, nil
}

// ListActive returns the active companies ordered by name.
func (r *PostgresRoster) ListActive(ctx context.Context) ([]jobs.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, url FROM companies WHERE active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []jobs.Company
	for rows.Next() {
		var c jobs.Company
		if err := rows.Scan(&c.Name, &c.SourceURL); err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}
		c.Active = true
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}

	r.logger.Debug("Roster loaded", "active", len(companies))
	return companies, nil
}

// Close releases the connection pool.
func (r *PostgresRoster) Close() {
	r.pool.Close()
}

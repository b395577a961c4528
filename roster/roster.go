// Package roster knows which companies are being watched. A roster is
// read fresh at the start of every cycle, so edits take effect without
// a restart.
package roster

import (
	"context"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// Roster lists the companies to scrape. ListActive returns only
// companies marked active, in roster order.
type Roster interface {
	ListActive(ctx context.Context) ([]jobs.Company, error)
}

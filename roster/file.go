package roster

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// FileRoster reads the watched companies from a YAML file:
//
//	companies:
//	  - name: Anthropic
//	    url: https://www.anthropic.com/careers
//	    active: true
type FileRoster struct {
	path   string
	logger *slog.Logger
}

type rosterFile struct {
	Companies []jobs.Company `yaml:"companies"`
}

// NewFile creates a roster backed by the YAML file at path. The file is
// re-read on every ListActive call.
func NewFile(path string, logger *slog.Logger) *FileRoster {
	return &FileRoster{path: path, logger: logger}
}

// ListActive returns the active companies in file order.
func (r *FileRoster) ListActive(_ context.Context) ([]jobs.Company, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}

	active := make([]jobs.Company, 0, len(f.Companies))
	for _, c := range f.Companies {
		if c.Name == "" || c.SourceURL == "" {
			return nil, fmt.Errorf("roster entry missing name or url: %+v", c)
		}
		if !c.Active {
			continue
		}
		active = append(active, c)
	}

	r.logger.Debug("Roster loaded", "path", r.path, "total", len(f.Companies), "active", len(active))
	return active, nil
}

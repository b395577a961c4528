package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/api/googleapi"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

// GCSStore keeps one JSON object per canonical URL in a Cloud Storage
// bucket. The record-if-absent primitive is a conditional create: the
// write only succeeds when the object does not exist, so racing tasks
// resolve server-side. With localPath set it uses the filesystem
// instead, for development without a bucket.
type GCSStore struct {
	client    *storage.Client
	logger    *slog.Logger
	bucket    string
	localPath string
}

// NewGCS creates a store backed by bucket. localPath, when non-empty,
// switches to local filesystem storage and client may be nil.
func NewGCS(client *storage.Client, bucket, localPath string, logger *slog.Logger) (*GCSStore, error) {
	if localPath != "" {
		if err := os.MkdirAll(localPath, 0o750); err != nil {
			return nil, fmt.Errorf("create local storage directory: %w", err)
		}
		logger.Info("Seen store using local filesystem", "path", localPath)
	}
	return &GCSStore{client: client, logger: logger, bucket: bucket, localPath: localPath}, nil
}

// seenKey derives a stable object name from a canonical URL. Hashing
// keeps arbitrary URLs out of object names and bounds their length.
func seenKey(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return "seen-" + hex.EncodeToString(sum[:]) + ".json"
}

// RecordIfNew writes rec under its URL's key if no record exists yet.
func (s *GCSStore) RecordIfNew(ctx context.Context, rec jobs.SeenPosting) (bool, error) {
	key := seenKey(rec.CanonicalURL)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal seen posting: %w", err)
	}

	// Local filesystem storage
	if s.localPath != "" {
		filePath := filepath.Join(s.localPath, key)
		f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			if os.IsExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("create local record: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			if closeErr := f.Close(); closeErr != nil {
				s.logger.Warn("Failed to close record file after error", "error", closeErr)
			}
			return false, fmt.Errorf("write local record: %w", err)
		}
		if err := f.Close(); err != nil {
			return false, fmt.Errorf("close local record: %w", err)
		}
		return true, nil
	}

	// Cloud Storage with retry logic for reliability
	inserted := true
	err = retry.Do(
		func() error {
			obj := s.client.Bucket(s.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})
			w := obj.NewWriter(ctx)
			if _, writeErr := w.Write(data); writeErr != nil {
				if closeErr := w.Close(); closeErr != nil {
					s.logger.Warn("Failed to close writer after error", "error", closeErr)
				}
				return fmt.Errorf("write to storage: %w", writeErr)
			}
			if closeErr := w.Close(); closeErr != nil {
				// Precondition failure means another task got here first.
				var gerr *googleapi.Error
				if errors.As(closeErr, &gerr) && gerr.Code == http.StatusPreconditionFailed {
					inserted = false
					return nil
				}
				return fmt.Errorf("close storage writer: %w", closeErr)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(2*time.Minute),
		retry.MaxJitter(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			s.logger.Info("Retrying record operation after error", "attempt", n, "key", key, "error", retryErr)
		}),
	)
	if err != nil {
		return false, fmt.Errorf("record after retries: %w", err)
	}

	return inserted, nil
}

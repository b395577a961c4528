package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/tsrivatsav/Job-Alerts/pkg/jobs"
)

const redisKeyPrefix = "seen:"

// RedisStore keeps one value per canonical URL. SETNX is the atomic
// record-if-absent primitive; keys never expire.
type RedisStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedis connects to the Redis instance at redisURL and verifies it
// answers.
func NewRedis(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Redis seen store ready", "addr", opt.Addr)
	return &RedisStore{rdb: rdb, logger: logger}, nil
}

// RecordIfNew stores rec under its URL and reports whether the URL was
// unseen.
func (s *RedisStore) RecordIfNew(ctx context.Context, rec jobs.SeenPosting) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal seen posting: %w", err)
	}

	inserted, err := s.rdb.SetNX(ctx, redisKeyPrefix+rec.CanonicalURL, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("setnx seen posting: %w", err)
	}
	return inserted, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

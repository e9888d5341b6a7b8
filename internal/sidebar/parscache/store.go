// Package parscache keeps serialized model parameters in Redis, keyed by
// content hash, so an export service can fetch them after a submission.
package parscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"chime-sidebar/internal/common/errors"
)

const KeyPrefix = "chime:pars:"

var ErrNotFound = stderrors.New("pars not found")

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key returns the content-addressed key for blob. Identical parameter sets
// share a key.
func Key(blob string) string {
	sum := sha256.Sum256([]byte(blob))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// Put stores blob and returns its key.
func (s *Store) Put(ctx context.Context, blob string) (string, error) {
	key := Key(blob)
	if err := s.rdb.Set(ctx, key, blob, s.ttl).Err(); err != nil {
		return "", errors.NewCacheUnavailableError(err)
	}
	return key, nil
}

// Get returns the blob stored under key. key may be given with or without
// KeyPrefix.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if len(key) < len(KeyPrefix) || key[:len(KeyPrefix)] != KeyPrefix {
		key = KeyPrefix + key
	}
	blob, err := s.rdb.Get(ctx, key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.NewCacheUnavailableError(err)
	}
	return blob, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return errors.NewCacheUnavailableError(err)
	}
	return nil
}

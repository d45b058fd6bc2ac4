// Package redis implements the result cache on plain Redis string values
// with per-entry TTL. Keys are digests of normalized query text; expiry is
// enforced by Redis itself, never by the pipeline.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/observability"
)

const scanBatchSize = 100

// Store implements domain.ResultCache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis result cache adapter.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Lookup returns the cached result for the query. An explicit miss, an
// expired entry and an unreachable store are indistinguishable: all return
// domain.ErrCacheMiss so store outages degrade to recomputation.
func (s *Store) Lookup(ctx context.Context, query string) (*domain.QueryResult, error) {
	logger := observability.FromContext(ctx)
	key := domain.CacheKey(query)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache store unavailable, treating as miss",
				observability.Error(err))
		}
		return nil, domain.ErrCacheMiss
	}

	var result domain.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warn("corrupt cache entry, treating as miss",
			observability.String("key", key),
			observability.Error(err))
		return nil, domain.ErrCacheMiss
	}

	logger.Info("cache hit", observability.String("key", key))
	return &result, nil
}

// LookupAny returns the first live cached result among the candidates,
// preserving their order: once a hit occurs, lower-ranked candidates are
// not consulted.
func (s *Store) LookupAny(ctx context.Context, queries []string) (*domain.QueryResult, error) {
	for _, query := range queries {
		if result, err := s.Lookup(ctx, query); err == nil {
			return result, nil
		}
	}
	return nil, domain.ErrCacheMiss
}

// Store caches the result under the normalized query key with the
// configured TTL. Writes are last-writer-wins on the same key.
func (s *Store) Store(ctx context.Context, query string, result *domain.QueryResult) error {
	if result == nil {
		return errors.New("result cannot be nil")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	key := domain.CacheKey(query)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}

	observability.FromContext(ctx).Info("result cached",
		observability.String("key", key),
		observability.Duration("ttl", s.ttl))
	return nil
}

// Count returns the number of live cache entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, domain.CacheKeyPrefix()+"*", scanBatchSize).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan cache keys: %w", err)
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// Clear removes all cache entries. Operational use only; the pipeline never
// deletes.
func (s *Store) Clear(ctx context.Context) error {
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, domain.CacheKeyPrefix()+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping reports whether the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache store unreachable: %w", err)
	}
	return nil
}

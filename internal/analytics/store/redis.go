package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/analytics"
)

// DefaultRedisPrefix namespaces analytics keys away from short URL records.
const DefaultRedisPrefix = "stats:"

const (
	fieldSource         = "source"
	fieldCreatedAt      = "created_at"
	fieldTTL            = "ttl"
	fieldClicks         = "clicks"
	fieldLastAccessedAt = "last_accessed_at"
	fieldReferrerPrefix = "referrer:"
)

// Redis keeps per-URL counters in one hash per short URL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed analytics store.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) SaveURLCreated(ctx context.Context, event *analytics.URLCreatedEvent) error {
	values := map[string]any{
		fieldSource:    event.Source,
		fieldCreatedAt: event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	if event.TTL != nil {
		values[fieldTTL] = *event.TTL
	}

	if err := r.client.HSet(ctx, r.key(event.Hash), values).Err(); err != nil {
		return fmt.Errorf("save url created %s: %w", event.Hash, err)
	}

	return nil
}

func (r *Redis) SaveURLAccessed(ctx context.Context, event *analytics.URLAccessedEvent) error {
	key := r.key(event.Hash)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldClicks, 1)
		pipe.HSet(ctx, key, fieldLastAccessedAt, event.AccessedAt.UTC().Format(time.RFC3339Nano))

		if event.Referrer != "" {
			pipe.HIncrBy(ctx, key, fieldReferrerPrefix+event.Referrer, 1)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("save url accessed %s: %w", event.Hash, err)
	}

	return nil
}

// Stats returns the aggregated analytics for hash. Unknown hashes yield zero stats.
func (r *Redis) Stats(ctx context.Context, hash string) (*analytics.Stats, error) {
	values, err := r.client.HGetAll(ctx, r.key(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("load stats %s: %w", hash, err)
	}

	stats := &analytics.Stats{
		Hash:      hash,
		Source:    values[fieldSource],
		Referrers: map[string]int64{},
	}

	for field, value := range values {
		switch {
		case field == fieldClicks:
			stats.Clicks, _ = strconv.ParseInt(value, 10, 64)
		case field == fieldCreatedAt:
			stats.CreatedAt, _ = time.Parse(time.RFC3339Nano, value)
		case field == fieldLastAccessedAt:
			stats.LastAccessedAt, _ = time.Parse(time.RFC3339Nano, value)
		case strings.HasPrefix(field, fieldReferrerPrefix):
			count, _ := strconv.ParseInt(value, 10, 64)
			stats.Referrers[strings.TrimPrefix(field, fieldReferrerPrefix)] = count
		}
	}

	return stats, nil
}

func (r *Redis) key(hash string) string {
	return r.prefix + hash
}

// Compile-time check.
var _ analytics.Store = (*Redis)(nil)

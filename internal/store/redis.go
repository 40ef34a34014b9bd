package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// DefaultRedisPrefix namespaces short URL keys.
const DefaultRedisPrefix = "url:"

var errInvalidTTL = errors.New("ttl must be positive")

// RedisStore is a Redis implementation of shortener.Repository.
// Expiry is delegated to Redis, so records are stored without created_at.
type RedisStore struct {
	guard

	client *redis.Client
	prefix string // "url:" for hash->record (string keys)
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) Save(ctx context.Context, shortURL *shortener.ShortURL) (shortener.Hash, error) {
	const op = "redis.save"

	release, err := r.acquire(op)
	if err != nil {
		return "", err
	}
	defer release()

	var expiration time.Duration

	if shortURL.TTL != nil {
		if *shortURL.TTL <= 0 {
			return "", shortener.E(op, shortener.KindErrorOnSave, fmt.Errorf("%w: %d", errInvalidTTL, *shortURL.TTL))
		}

		expiration = time.Duration(*shortURL.TTL) * time.Second
	}

	raw, err := json.Marshal(shortURL.WithoutCreatedAt())
	if err != nil {
		return "", shortener.E(op, shortener.KindErrorOnSave, err)
	}

	// A zero expiration is a plain SET with no expiry.
	if err = r.client.Set(ctx, r.key(shortURL.Hash), raw, expiration).Err(); err != nil {
		return "", shortener.E(op, shortener.KindErrorOnSave, err)
	}

	return shortURL.Hash, nil
}

func (r *RedisStore) Find(ctx context.Context, hash shortener.Hash) (*shortener.ShortURL, bool, error) {
	const op = "redis.find"

	release, err := r.acquire(op)
	if err != nil {
		return nil, false, err
	}
	defer release()

	raw, err := r.client.Get(ctx, r.key(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, shortener.E(op, shortener.KindUndefined, err)
	}

	var record shortener.ShortURL
	if err = json.Unmarshal(raw, &record); err != nil {
		return nil, false, shortener.E(op, shortener.KindUndefined, err)
	}

	return &record, true, nil
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) key(hash shortener.Hash) string {
	return r.prefix + string(hash)
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)

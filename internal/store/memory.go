package store

import (
	"context"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
// Like the file log it keeps every saved record, evaluates expiry at read
// time and returns the first unexpired record for a hash.
type MemoryStore struct {
	guard

	urls map[shortener.Hash][]shortener.ShortURL // hash -> records in save order
	now  shortener.Clock
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an in-memory store evaluating expiry with clock.
func NewMemoryStoreWithClock(clock shortener.Clock) *MemoryStore {
	return &MemoryStore{
		urls: make(map[shortener.Hash][]shortener.ShortURL),
		now:  clock,
	}
}

func (m *MemoryStore) Save(_ context.Context, shortURL *shortener.ShortURL) (shortener.Hash, error) {
	release, err := m.acquire("memory.save")
	if err != nil {
		return "", err
	}
	defer release()

	m.urls[shortURL.Hash] = append(m.urls[shortURL.Hash], *shortURL)

	return shortURL.Hash, nil
}

func (m *MemoryStore) Find(_ context.Context, hash shortener.Hash) (*shortener.ShortURL, bool, error) {
	release, err := m.acquire("memory.find")
	if err != nil {
		return nil, false, err
	}
	defer release()

	now := m.now()

	for _, record := range m.urls[hash] {
		if !record.IsExpired(now) {
			return &record, true, nil
		}
	}

	return nil, false, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)

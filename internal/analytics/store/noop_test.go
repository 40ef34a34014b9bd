package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/analytics"
	"github.com/serroba/url-shortener/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewNoop(t *testing.T) {
	logger := zap.NewNop()
	noop := store.NewNoop(logger)

	assert.NotNil(t, noop)
}

func TestNoop_SaveURLCreated(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	noop := store.NewNoop(zap.New(core))
	ttl := int64(60)

	event := &analytics.URLCreatedEvent{
		Hash:      "abc123",
		Source:    "https://example.com",
		TTL:       &ttl,
		CreatedAt: time.Now(),
	}

	err := noop.SaveURLCreated(context.Background(), event)

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc123", logs.All()[0].ContextMap()["hash"])
	assert.Equal(t, int64(60), logs.All()[0].ContextMap()["ttl"])
}

func TestNoop_SaveURLAccessed(t *testing.T) {
	logger := zap.NewNop()
	noop := store.NewNoop(logger)

	event := &analytics.URLAccessedEvent{
		Hash:       "abc123",
		AccessedAt: time.Now(),
		ClientIP:   "127.0.0.1",
		UserAgent:  "TestAgent/1.0",
		Referrer:   "https://referrer.com",
	}

	err := noop.SaveURLAccessed(context.Background(), event)

	require.NoError(t, err)
}

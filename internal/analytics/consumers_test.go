package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubscriber struct {
	createdChan  chan *message.Message
	accessedChan chan *message.Message
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		createdChan:  make(chan *message.Message, 10),
		accessedChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	switch topic {
	case analytics.TopicURLCreated:
		return m.createdChan, nil
	case analytics.TopicURLAccessed:
		return m.accessedChan, nil
	default:
		return nil, errors.New("unknown topic")
	}
}

func (m *mockSubscriber) Close() error {
	return nil
}

type mockStore struct {
	mu             sync.Mutex
	createdEvents  []*analytics.URLCreatedEvent
	accessedEvents []*analytics.URLAccessedEvent
}

func (m *mockStore) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createdEvents = append(m.createdEvents, event)

	return nil
}

func (m *mockStore) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accessedEvents = append(m.accessedEvents, event)

	return nil
}

func waitAck(t *testing.T, msg *message.Message) {
	t.Helper()

	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("message was nacked")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack")
	}
}

func TestNewConsumers(t *testing.T) {
	sub := newMockSubscriber()
	store := &mockStore{}

	consumers := analytics.NewConsumers(sub, store, zap.NewNop())
	require.Len(t, consumers, 2)

	for _, c := range consumers {
		require.NoError(t, c.Start(context.Background()))
	}

	defer func() {
		for _, c := range consumers {
			_ = c.Shutdown()
		}
	}()

	createdPayload, _ := json.Marshal(&analytics.URLCreatedEvent{Hash: "abc123", Source: "https://example.com"})
	created := message.NewMessage(uuid.NewString(), createdPayload)
	sub.createdChan <- created

	accessedPayload, _ := json.Marshal(&analytics.URLAccessedEvent{Hash: "abc123", ClientIP: "127.0.0.1"})
	accessed := message.NewMessage(uuid.NewString(), accessedPayload)
	sub.accessedChan <- accessed

	waitAck(t, created)
	waitAck(t, accessed)

	store.mu.Lock()
	defer store.mu.Unlock()

	require.Len(t, store.createdEvents, 1)
	require.Len(t, store.accessedEvents, 1)
	assert.Equal(t, "abc123", store.createdEvents[0].Hash)
	assert.Equal(t, "127.0.0.1", store.accessedEvents[0].ClientIP)
}

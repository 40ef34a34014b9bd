package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers creates one typed consumer per analytics topic, all persisting to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicURLCreated, store.SaveURLCreated, logger),
		messaging.NewConsumer(subscriber, TopicURLAccessed, store.SaveURLAccessed, logger),
	}
}

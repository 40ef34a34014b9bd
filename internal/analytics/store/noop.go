package store

import (
	"context"

	"github.com/serroba/url-shortener/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	fields := []zap.Field{
		zap.String("hash", event.Hash),
		zap.String("source", event.Source),
		zap.Time("createdAt", event.CreatedAt),
	}

	if event.TTL != nil {
		fields = append(fields, zap.Int64("ttl", *event.TTL))
	}

	n.logger.Info("url created event received", fields...)

	return nil
}

func (n *Noop) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	n.logger.Info("url accessed event received",
		zap.String("hash", event.Hash),
		zap.Time("accessedAt", event.AccessedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

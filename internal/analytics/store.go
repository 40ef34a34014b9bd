package analytics

import (
	"context"
	"time"
)

// Store persists analytics events consumed from the event stream.
type Store interface {
	SaveURLCreated(ctx context.Context, event *URLCreatedEvent) error
	SaveURLAccessed(ctx context.Context, event *URLAccessedEvent) error
}

// Stats aggregates what has been recorded for a single short URL.
type Stats struct {
	Hash           string
	Source         string
	CreatedAt      time.Time
	Clicks         int64
	LastAccessedAt time.Time
	Referrers      map[string]int64
}

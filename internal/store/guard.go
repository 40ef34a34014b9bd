package store

import (
	"sync"

	"github.com/serroba/url-shortener/internal/shortener"
)

// guard serializes access to a backend handle. Acquisition is attempted once
// and never blocks: contention fails fast with KindTemporarilyUnavailable.
type guard struct {
	mu sync.Mutex
}

func (g *guard) acquire(op string) (release func(), err error) {
	if !g.mu.TryLock() {
		return nil, shortener.E(op, shortener.KindTemporarilyUnavailable, shortener.ErrBusy)
	}

	return g.mu.Unlock, nil
}

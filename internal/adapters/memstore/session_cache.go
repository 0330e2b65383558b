// Package memstore provides an in-process session cache used when Redis is disabled.
// Entries do not survive a restart.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/visorhr/visorhr-ui/internal/ports"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// SessionCache is a mutex-guarded map with optional expiry.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	clock   ports.Clock
}

var _ ports.SessionCache = (*SessionCache)(nil)

// NewSessionCache creates an empty cache. A zero ttl never expires entries.
func NewSessionCache(ttl time.Duration, clock ports.Clock) *SessionCache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &SessionCache{entries: make(map[string]entry), ttl: ttl, clock: clock}
}

func (c *SessionCache) Load(_ context.Context, scope string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[scope]
	if !ok {
		return nil, ports.ErrNotCached
	}
	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, scope)
		return nil, ports.ErrNotCached
	}
	return append([]byte(nil), e.data...), nil
}

func (c *SessionCache) Save(_ context.Context, scope string, data []byte) error {
	if scope == "" {
		return errors.New("session cache scope cannot be empty")
	}
	e := entry{data: append([]byte(nil), data...)}
	if c.ttl > 0 {
		e.expiresAt = c.clock.Now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[scope] = e
	return nil
}

func (c *SessionCache) Delete(_ context.Context, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, scope)
	return nil
}

// Len returns the number of stored entries, expired ones included until next access.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

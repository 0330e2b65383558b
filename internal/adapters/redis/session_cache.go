// Package redis provides the Redis-backed session cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

// DefaultPrefix namespaces cache keys when none is configured.
const DefaultPrefix = "visorhr:"

// SessionCache stores each view's session copy under {prefix}{scope}:visorhr_user.
// Entries expire after TTL; a zero TTL keeps them until deleted.
type SessionCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.SessionCache = (*SessionCache)(nil)

// SessionCacheOptions groups dependencies for NewSessionCache.
type SessionCacheOptions struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// NewSessionCache creates a Redis session cache.
func NewSessionCache(opts SessionCacheOptions) *SessionCache {
	prefix := opts.Prefix
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &SessionCache{client: opts.Client, prefix: prefix, ttl: opts.TTL}
}

// Key returns the Redis key for scope.
func (c *SessionCache) Key(scope string) string {
	return c.prefix + scope + ":" + domainauth.StorageKey
}

func (c *SessionCache) Load(ctx context.Context, scope string) ([]byte, error) {
	if scope == "" {
		return nil, ports.ErrNotCached
	}
	data, err := c.client.Get(ctx, c.Key(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNotCached
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (c *SessionCache) Save(ctx context.Context, scope string, data []byte) error {
	if scope == "" {
		return errors.New("session cache scope cannot be empty")
	}
	if err := c.client.Set(ctx, c.Key(scope), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, scope string) error {
	if scope == "" {
		return nil
	}
	if err := c.client.Del(ctx, c.Key(scope)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

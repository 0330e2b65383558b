package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/visorhr/visorhr-ui/config"
	"github.com/visorhr/visorhr-ui/internal/adapters/memstore"
	redisadapter "github.com/visorhr/visorhr-ui/internal/adapters/redis"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

const redisPingTimeout = 5 * time.Second

// ConnectRedis establishes a connection to Redis. URI accepts either host:port or a
// redis:// / rediss:// URL; a URL carries its own credentials and database.
//
//nolint:ireturn // callers only need the universal client surface.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("redis configuration requires a URI")
	}

	var (
		client   *redis.Client
		addrDesc string
	)
	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client, addrDesc = redis.NewClient(opt), redactRedisURL(uri)
	} else {
		client = redis.NewClient(&redis.Options{Addr: uri, Password: cfg.Password, DB: cfg.DB})
		addrDesc = uri
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", addrDesc)
	}
	return client, nil
}

func isRedisURL(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "redis://") || strings.HasPrefix(lower, "rediss://")
}

// redactRedisURL drops credentials so the address can be logged.
func redactRedisURL(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		if i := strings.LastIndex(uri, "@"); i > -1 {
			return uri[i+1:]
		}
		return uri
	}
	if u.User != nil {
		u.User = url.User("*")
	}
	return u.Redacted()
}

// SessionCacheResult is the persisted session cache and whatever must be closed with it.
type SessionCacheResult struct {
	Cache ports.SessionCache
	// Backend names the implementation for logs: "redis" or "memory".
	Backend string
	Close   func() error
}

// NewSessionCache selects the Redis-backed cache when enabled and the in-process one otherwise.
func NewSessionCache(ctx context.Context, cfg *config.AppConfig, clock ports.Clock, logger *slog.Logger) (SessionCacheResult, error) {
	if !cfg.Redis.Enabled {
		return SessionCacheResult{
			Cache:   memstore.NewSessionCache(cfg.SessionCache.TTL, clock),
			Backend: "memory",
			Close:   func() error { return nil },
		}, nil
	}

	client, err := ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return SessionCacheResult{}, fmt.Errorf("connect redis: %w", err)
	}
	return SessionCacheResult{
		Cache: redisadapter.NewSessionCache(redisadapter.SessionCacheOptions{
			Client: client,
			Prefix: cfg.SessionCache.Prefix,
			TTL:    cfg.SessionCache.TTL,
		}),
		Backend: "redis",
		Close:   client.Close,
	}, nil
}

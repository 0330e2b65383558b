package config

import (
	"strings"
	"time"
)

// RedisConfig contains Redis connection settings for the persisted session cache.
type RedisConfig struct {
	// Enabled selects the Redis cache; when false an in-process cache is used.
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// SessionCacheConfig controls how the session cache is keyed and how long entries live.
type SessionCacheConfig struct {
	// Prefix namespaces cache keys, e.g. "visorhr:" -> "visorhr:<view>:visorhr_user".
	Prefix string `env:"SESSION_CACHE_PREFIX" envDefault:"visorhr:"`

	// TTL is how long a cached session survives without being rewritten.
	TTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"720h"`
}

// Sanitize normalises the prefix and restores a positive TTL.
func (s *SessionCacheConfig) Sanitize() {
	s.Prefix = strings.TrimSpace(s.Prefix)
	if s.Prefix == "" {
		s.Prefix = "visorhr:"
	}
	if s.TTL <= 0 {
		s.TTL = 720 * time.Hour
	}
}

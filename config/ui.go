package config

import "time"

const (
	defaultStatusTTL   = 3 * time.Second
	defaultViewIdleTTL = 30 * time.Minute
	defaultMaxViews    = 10000
)

// UIConfig controls per-browser view behaviour.
type UIConfig struct {
	// StatusTTL is how long a status message stays visible after it was last set.
	StatusTTL time.Duration `env:"UI_STATUS_TTL" envDefault:"3s"`

	// ViewIdleTTL unmounts views that saw no request for this long.
	ViewIdleTTL time.Duration `env:"UI_VIEW_IDLE_TTL" envDefault:"30m"`

	// MaxViews bounds the number of live views; the least recently used is unmounted first.
	MaxViews int `env:"UI_MAX_VIEWS" envDefault:"10000"`
}

// Sanitize restores defaults for non-positive values.
func (u *UIConfig) Sanitize() {
	if u.StatusTTL <= 0 {
		u.StatusTTL = defaultStatusTTL
	}
	if u.ViewIdleTTL <= 0 {
		u.ViewIdleTTL = defaultViewIdleTTL
	}
	if u.MaxViews <= 0 {
		u.MaxViews = defaultMaxViews
	}
}

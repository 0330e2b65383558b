package config

import (
	"strings"
	"time"
)

const defaultBackendTimeout = 10 * time.Second

// BackendConfig points the client at the HR backend's session-auth API.
type BackendConfig struct {
	// APIBaseURL is the API root; auth calls go to {APIBaseURL}/auth/...
	APIBaseURL string `env:"BACKEND_API_BASE_URL" envDefault:"http://localhost:8000/api"`

	// Timeout bounds every backend request.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// Sanitize trims the base URL and restores a usable timeout.
func (b *BackendConfig) Sanitize() {
	b.APIBaseURL = strings.TrimRight(strings.TrimSpace(b.APIBaseURL), "/")
	if b.Timeout <= 0 {
		b.Timeout = defaultBackendTimeout
	}
}

// AuthBaseURL returns the root of the auth endpoints.
func (b BackendConfig) AuthBaseURL() string {
	return b.APIBaseURL + "/auth"
}

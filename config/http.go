package config

const (
	defaultMaxUploadBytes = 5 << 20
	maxMaxUploadBytes     = 32 << 20
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for the view cookie.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// MaxUploadBytes caps multipart uploads for photo and signature fields.
	MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"5242880"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = defaultMaxUploadBytes
	}
	if h.MaxUploadBytes > maxMaxUploadBytes {
		h.MaxUploadBytes = maxMaxUploadBytes
	}
}

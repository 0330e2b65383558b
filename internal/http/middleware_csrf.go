package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/visorhr/visorhr-ui/internal/errors"
)

const (
	// CSRFCookieName holds the double-submit token. It is readable by scripts so htmx can echo it.
	CSRFCookieName = "visorhr_csrf"
	// CSRFHeaderName carries the token on htmx requests.
	CSRFHeaderName = "X-Csrf-Token"
	// CSRFFormField carries the token on plain form posts.
	CSRFFormField = "csrf_token"

	csrfTokenBytes = 32
	csrfMaxAge     = 12 * 3600
)

// CSRFProtection returns a middleware implementing the double-submit cookie pattern.
// Safe methods pass through and receive a token; every other method must echo the
// cookie value in the X-Csrf-Token header or the csrf_token form field.
func CSRFProtection(cookieDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					WriteAppError(w, apperrors.Wrap(err, apperrors.ErrCodeInternal, "csrf token unavailable"))
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					Domain:   cookieDomain,
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteStrictMode,
					MaxAge:   csrfMaxAge,
				})
			}

			if !safeMethod(r.Method) && !csrfTokenMatches(r, token) {
				WriteAppError(w, apperrors.Forbidden("csrf token missing or invalid"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token)))
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// isSecureRequest reports HTTPS directly or through a proxy's X-Forwarded-Proto list.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// csrfTokenMatches compares in constant time. Multipart bodies are left unread so upload
// handlers can apply their own size limit; those requests must use the header.
func csrfTokenMatches(r *http.Request, want string) bool {
	got := r.Header.Get(CSRFHeaderName)
	if got == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return false
		}
		got = r.PostFormValue(CSRFFormField)
	}
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

type csrfTokenKey struct{}

// CSRFToken returns the token placed in the context by CSRFProtection.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey{}).(string)
	return token
}

// Package ports defines interfaces (hexagonal ports) for the client's collaborators.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
)

// LoginInput carries the credentials for a login call.
type LoginInput struct {
	Username string
	Password string
}

// RegisterInput carries a new account. Email is optional.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is a successful login or register response. User is nil when the backend omits it.
type AuthResult struct {
	Message string
	User    *domainauth.Session
}

// AuthBackend is the HR backend's session-auth API as seen by one view.
// Failures are returned as *domainauth.BackendError.
type AuthBackend interface {
	// CheckAccountsExist reports whether any account has been created.
	CheckAccountsExist(ctx context.Context) (bool, error)
	Login(ctx context.Context, in LoginInput) (AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	// Logout ends the backend session and returns its message, if any.
	Logout(ctx context.Context) (string, error)
	// ValidateAdmin checks administrator credentials; any 2xx is success.
	ValidateAdmin(ctx context.Context, username, password string) (string, error)
}

// ErrNotCached is returned by SessionCache.Load when nothing is stored for the scope.
var ErrNotCached = errors.New("session not cached")

// SessionCache persists the serialized session copy of a view.
// The scope identifies the view; implementations add the fixed storage key.
type SessionCache interface {
	Load(ctx context.Context, scope string) ([]byte, error)
	Save(ctx context.Context, scope string, data []byte) error
	Delete(ctx context.Context, scope string) error
}

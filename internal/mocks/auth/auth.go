// Package auth contains simple hand-written test doubles for the auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"sync"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthBackend  = (*ScriptedBackend)(nil)
	_ ports.SessionCache = (*MemorySessionCache)(nil)
)

// ScriptedBackend answers each call with its Func field or a permissive default:
// no accounts exist, every login and register succeeds, logout and admin validation succeed.
type ScriptedBackend struct {
	CheckAccountsExistFunc func(ctx context.Context) (bool, error)
	LoginFunc              func(ctx context.Context, in ports.LoginInput) (ports.AuthResult, error)
	RegisterFunc           func(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error)
	LogoutFunc             func(ctx context.Context) (string, error)
	ValidateAdminFunc      func(ctx context.Context, username, password string) (string, error)

	mu    sync.Mutex
	calls map[string]int
}

// NewScriptedBackend returns a backend with default answers.
func NewScriptedBackend() *ScriptedBackend {
	return &ScriptedBackend{}
}

func (b *ScriptedBackend) record(op string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.calls == nil {
		b.calls = map[string]int{}
	}
	b.calls[op]++
}

// Calls returns how many times op was invoked.
func (b *ScriptedBackend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *ScriptedBackend) CheckAccountsExist(ctx context.Context) (bool, error) {
	b.record("CheckAccountsExist")
	if b.CheckAccountsExistFunc != nil {
		return b.CheckAccountsExistFunc(ctx)
	}
	return false, nil
}

func (b *ScriptedBackend) Login(ctx context.Context, in ports.LoginInput) (ports.AuthResult, error) {
	b.record("Login")
	if b.LoginFunc != nil {
		return b.LoginFunc(ctx, in)
	}
	return ports.AuthResult{User: &domainauth.Session{Username: in.Username}}, nil
}

func (b *ScriptedBackend) Register(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error) {
	b.record("Register")
	if b.RegisterFunc != nil {
		return b.RegisterFunc(ctx, in)
	}
	return ports.AuthResult{User: &domainauth.Session{Username: in.Username, Email: in.Email}}, nil
}

func (b *ScriptedBackend) Logout(ctx context.Context) (string, error) {
	b.record("Logout")
	if b.LogoutFunc != nil {
		return b.LogoutFunc(ctx)
	}
	return "", nil
}

func (b *ScriptedBackend) ValidateAdmin(ctx context.Context, username, password string) (string, error) {
	b.record("ValidateAdmin")
	if b.ValidateAdminFunc != nil {
		return b.ValidateAdminFunc(ctx, username, password)
	}
	return "", nil
}

// Rejected builds the error a backend returns for a non-2xx response.
func Rejected(op string, status int, message string) error {
	return &domainauth.BackendError{Op: op, Status: status, Message: message}
}

// MemorySessionCache is an in-memory session cache for unit tests.
// SaveErr and DeleteErr, when set, are returned instead of touching the map.
type MemorySessionCache struct {
	mu        sync.Mutex
	entries   map[string][]byte
	SaveErr   error
	DeleteErr error
}

// NewMemorySessionCache creates an empty cache.
func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{entries: make(map[string][]byte)}
}

func (m *MemorySessionCache) Load(_ context.Context, scope string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[scope]
	if !ok {
		return nil, ports.ErrNotCached
	}
	return data, nil
}

func (m *MemorySessionCache) Save(_ context.Context, scope string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[scope] = data
	return nil
}

func (m *MemorySessionCache) Delete(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.entries, scope)
	return nil
}

// Put stores raw bytes, e.g. a corrupt payload.
func (m *MemorySessionCache) Put(scope string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[scope] = data
}

// Has reports whether scope holds an entry.
func (m *MemorySessionCache) Has(scope string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[scope]
	return ok
}

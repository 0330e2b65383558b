// Package mocks provides gomock implementations of the client's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockAuthBackend(ctrl)
//	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.AuthResult{}, nil)
package mocks

// Generate mock for AuthBackend interface from internal/ports package.
// This creates MockAuthBackend with methods for all AuthBackend interface methods:
// CheckAccountsExist, Login, Register, Logout, ValidateAdmin
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_backend_mock.go github.com/visorhr/visorhr-ui/internal/ports AuthBackend

// Generate mock for SessionCache interface from internal/ports package.
// This creates MockSessionCache with methods for all SessionCache interface methods:
// Load, Save, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_cache_mock.go github.com/visorhr/visorhr-ui/internal/ports SessionCache

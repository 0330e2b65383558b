package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/mocks"
	authmocks "github.com/visorhr/visorhr-ui/internal/mocks/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

func TestSession_BootstrapRegistrationWithoutAdmin(t *testing.T) {
	f := newFixture(t)
	v := f.view(t)
	ctx := context.Background()

	assert.False(t, v.Session.CheckAccountsExist(ctx))
	gate := v.Gate.Snapshot()
	assert.True(t, gate.RegistrationEnabled())
	assert.False(t, gate.OverlayVisible())

	require.NoError(t, v.Gate.SwitchTab(domainauth.TabRegister))
	require.NoError(t, v.Session.Register(ctx, "root", "root@example.com", "pw"))

	user := v.Session.User()
	require.NotNil(t, user)
	assert.Equal(t, "root", user.Username)
	assert.Equal(t, "root@example.com", user.Email)
	assert.True(t, f.cache.Has("view-1"))
	assert.Equal(t, "register successful", v.Status.Current().Text)
	assert.Zero(t, f.backend.Calls("ValidateAdmin"))
}

func TestSession_RegisterRequiresAdminOnceAccountsExist(t *testing.T) {
	f := newFixture(t)
	f.backend.CheckAccountsExistFunc = func(context.Context) (bool, error) { return true, nil }
	v := f.view(t)
	ctx := context.Background()

	require.True(t, v.Session.CheckAccountsExist(ctx))
	require.NoError(t, v.Gate.SwitchTab(domainauth.TabRegister))
	assert.True(t, v.Gate.OverlayVisible())
	assert.False(t, v.Gate.RegistrationEnabled())

	err := v.Session.Register(ctx, "bob", "", "pw")
	require.ErrorIs(t, err, ErrAdminValidationRequired)
	assert.Zero(t, f.backend.Calls("Register"))
	assert.Nil(t, v.Session.User())
	assert.Equal(t, MsgAdminRequired, v.Status.Current().Text)
	assert.True(t, v.Status.Current().IsError())
}

func TestSession_AccountsCheckFailureCountsAsNone(t *testing.T) {
	f := newFixture(t)
	f.backend.CheckAccountsExistFunc = func(context.Context) (bool, error) {
		return false, &domainauth.BackendError{Op: "check", Transport: true, Err: errors.New("refused")}
	}
	v := f.view(t)

	assert.False(t, v.Session.CheckAccountsExist(context.Background()))
	assert.True(t, v.Gate.RegistrationEnabled())
	assert.False(t, v.Gate.OverlayVisible())
}

func TestSession_LoginPersistsBackendUser(t *testing.T) {
	f := newFixture(t)
	f.backend.LoginFunc = func(_ context.Context, in ports.LoginInput) (ports.AuthResult, error) {
		return ports.AuthResult{
			Message: "Welcome back",
			User:    &domainauth.Session{Username: in.Username, Email: "alice@example.com"},
		}, nil
	}
	v := f.view(t)

	require.NoError(t, v.Session.Login(context.Background(), "alice", "pw"))

	snap := v.Session.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.False(t, snap.InFlight)
	assert.Equal(t, "alice@example.com", snap.User.Email)
	assert.Equal(t, "Welcome back", v.Status.Current().Text)

	data, err := f.cache.Load(context.Background(), "view-1")
	require.NoError(t, err)
	cached, err := domainauth.ParseSession(data)
	require.NoError(t, err)
	assert.Equal(t, "alice", cached.Username)
}

func TestSession_LoginFallsBackToSubmittedUsername(t *testing.T) {
	f := newFixture(t)
	f.backend.LoginFunc = func(context.Context, ports.LoginInput) (ports.AuthResult, error) {
		return ports.AuthResult{}, nil
	}
	v := f.view(t)

	require.NoError(t, v.Session.Login(context.Background(), "carol", "pw"))
	require.NotNil(t, v.Session.User())
	assert.Equal(t, "carol", v.Session.User().Username)
	assert.Equal(t, "login successful", v.Status.Current().Text)
}

func TestSession_LoginRejectedShowsBackendMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockAuthBackend(ctrl)
	backend.EXPECT().
		Login(gomock.Any(), ports.LoginInput{Username: "alice", Password: "nope"}).
		Return(ports.AuthResult{}, authmocks.Rejected("login", 401, "Invalid credentials"))

	f := newFixture(t)
	v := f.viewWith(t, backend)

	err := v.Session.Login(context.Background(), "alice", "nope")
	require.Error(t, err)
	assert.Nil(t, v.Session.User())
	assert.False(t, v.Session.Snapshot().InFlight)
	assert.False(t, f.cache.Has("view-1"))

	msg := v.Status.Current()
	assert.True(t, msg.IsError())
	assert.Equal(t, "Invalid credentials", msg.Text)
}

func TestSession_LoginTransportFailureUsesFallback(t *testing.T) {
	f := newFixture(t)
	f.backend.LoginFunc = func(context.Context, ports.LoginInput) (ports.AuthResult, error) {
		return ports.AuthResult{}, &domainauth.BackendError{Op: "login", Transport: true, Err: errors.New("dial tcp")}
	}
	v := f.view(t)

	require.Error(t, v.Session.Login(context.Background(), "alice", "pw"))
	assert.Equal(t, MsgRequestFailed, v.Status.Current().Text)
}

func TestSession_LoginClearsPreviousStatus(t *testing.T) {
	f := newFixture(t)
	var during domainauth.StatusMessage
	v := f.view(t)
	f.backend.LoginFunc = func(_ context.Context, in ports.LoginInput) (ports.AuthResult, error) {
		during = v.Status.Current()
		return ports.AuthResult{User: &domainauth.Session{Username: in.Username}}, nil
	}
	v.Status.Error("old failure")

	require.NoError(t, v.Session.Login(context.Background(), "alice", "pw"))
	assert.True(t, during.Empty())
}

func TestSession_LogoutSuccess(t *testing.T) {
	f := newFixture(t)
	f.backend.CheckAccountsExistFunc = func(context.Context) (bool, error) { return true, nil }
	v := f.view(t)
	ctx := context.Background()

	v.Session.CheckAccountsExist(ctx)
	require.NoError(t, v.Gate.SwitchTab(domainauth.TabRegister))
	require.NoError(t, v.Gate.ValidateAdmin(ctx, "admin", "pw"))
	require.NoError(t, v.Session.Register(ctx, "dave", "", "pw"))
	require.True(t, f.cache.Has("view-1"))

	require.NoError(t, v.Session.Logout(ctx))

	assert.Nil(t, v.Session.User())
	assert.False(t, f.cache.Has("view-1"))
	assert.False(t, v.Gate.Snapshot().AdminValidated)
	assert.True(t, v.Gate.OverlayVisible())
	assert.Equal(t, MsgLoggedOut, v.Status.Current().Text)
}

func TestSession_LogoutFailureKeepsSession(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "rejected with message", err: authmocks.Rejected("logout", 500, "Session store down"), wantMsg: "Session store down"},
		{name: "rejected without message", err: authmocks.Rejected("logout", 403, ""), wantMsg: MsgLogoutFailed},
		{name: "transport", err: &domainauth.BackendError{Op: "logout", Transport: true, Err: errors.New("timeout")}, wantMsg: MsgLogoutFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.backend.LogoutFunc = func(context.Context) (string, error) { return "", tt.err }
			v := f.view(t)
			ctx := context.Background()

			require.NoError(t, v.Session.Login(ctx, "erin", "pw"))
			require.Error(t, v.Session.Logout(ctx))

			require.NotNil(t, v.Session.User())
			assert.Equal(t, "erin", v.Session.User().Username)
			assert.True(t, f.cache.Has("view-1"))
			assert.Equal(t, tt.wantMsg, v.Status.Current().Text)
			assert.True(t, v.Status.Current().IsError())
		})
	}
}

func TestSession_OperationsAreMutuallyExclusive(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.backend.LoginFunc = func(_ context.Context, in ports.LoginInput) (ports.AuthResult, error) {
		close(entered)
		<-release
		return ports.AuthResult{User: &domainauth.Session{Username: in.Username}}, nil
	}
	v := f.view(t)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- v.Session.Login(ctx, "alice", "pw") }()
	<-entered

	assert.True(t, v.Session.Snapshot().InFlight)
	require.ErrorIs(t, v.Session.Login(ctx, "bob", "pw"), ErrOperationInProgress)
	require.ErrorIs(t, v.Session.Register(ctx, "bob", "", "pw"), ErrOperationInProgress)
	require.ErrorIs(t, v.Logout(ctx), ErrOperationInProgress)

	close(release)
	require.NoError(t, <-errc)

	assert.Equal(t, 1, f.backend.Calls("Login"))
	assert.Zero(t, f.backend.Calls("Register"))
	assert.Zero(t, f.backend.Calls("Logout"))
	assert.Equal(t, "alice", v.Session.User().Username)
	assert.False(t, v.Session.Snapshot().InFlight)
}

func TestSession_CompletionAfterCloseIsDropped(t *testing.T) {
	for _, fail := range []bool{false, true} {
		name := "success"
		if fail {
			name = "failure"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			entered := make(chan struct{})
			release := make(chan struct{})
			f.backend.LoginFunc = func(_ context.Context, in ports.LoginInput) (ports.AuthResult, error) {
				close(entered)
				<-release
				if fail {
					return ports.AuthResult{}, authmocks.Rejected("login", 401, "Invalid credentials")
				}
				return ports.AuthResult{User: &domainauth.Session{Username: in.Username}}, nil
			}
			v := f.view(t)

			errc := make(chan error, 1)
			go func() { errc <- v.Session.Login(context.Background(), "alice", "pw") }()
			<-entered
			v.Close()
			close(release)

			require.ErrorIs(t, <-errc, ErrViewClosed)
			assert.Nil(t, v.Session.User())
			assert.False(t, f.cache.Has("view-1"))
			assert.True(t, v.Status.Current().Empty())
		})
	}
}

func TestSession_RestoreSession(t *testing.T) {
	t.Run("valid entry", func(t *testing.T) {
		f := newFixture(t)
		f.cache.Put("view-1", []byte(`{"username":"frank","email":"f@example.com"}`))
		v := f.view(t)

		assert.True(t, v.Session.RestoreSession(context.Background()))
		require.NotNil(t, v.Session.User())
		assert.Equal(t, "frank", v.Session.User().Username)
	})

	t.Run("missing entry", func(t *testing.T) {
		f := newFixture(t)
		v := f.view(t)

		assert.False(t, v.Session.RestoreSession(context.Background()))
		assert.Nil(t, v.Session.User())
	})

	t.Run("corrupt entry is deleted", func(t *testing.T) {
		f := newFixture(t)
		f.cache.Put("view-1", []byte(`{not json`))
		v := f.view(t)

		assert.False(t, v.Session.RestoreSession(context.Background()))
		assert.Nil(t, v.Session.User())
		assert.False(t, f.cache.Has("view-1"))
	})

	t.Run("entry without username is deleted", func(t *testing.T) {
		f := newFixture(t)
		f.cache.Put("view-1", []byte(`{"username":"  "}`))
		v := f.view(t)

		assert.False(t, v.Session.RestoreSession(context.Background()))
		assert.False(t, f.cache.Has("view-1"))
	})
}

func TestSession_CacheWriteFailureDoesNotFailLogin(t *testing.T) {
	f := newFixture(t)
	f.cache.SaveErr = errors.New("cache down")
	v := f.view(t)

	require.NoError(t, v.Session.Login(context.Background(), "gina", "pw"))
	assert.Equal(t, "gina", v.Session.User().Username)
	assert.False(t, f.cache.Has("view-1"))
}

func TestSession_RestoreSessionCacheFailures(t *testing.T) {
	newView := func(t *testing.T, cache ports.SessionCache) *View {
		t.Helper()
		f := newFixture(t)
		r := NewViewRegistry(ViewRegistryOptions{
			Backends: backendFactoryFunc(func() (ports.AuthBackend, error) { return f.backend, nil }),
			Cache:    cache,
			Previews: f.previews,
			Clock:    f.clock,
		})
		v, err := r.build("view-1")
		require.NoError(t, err)
		t.Cleanup(v.Close)
		return v
	}

	t.Run("read error keeps the entry", func(t *testing.T) {
		cache := mocks.NewMockSessionCache(gomock.NewController(t))
		cache.EXPECT().Load(gomock.Any(), "view-1").Return(nil, errors.New("connection reset"))

		v := newView(t, cache)
		assert.False(t, v.Session.RestoreSession(context.Background()))
		assert.Nil(t, v.Session.User())
	})

	t.Run("corrupt entry is deleted even if delete fails", func(t *testing.T) {
		cache := mocks.NewMockSessionCache(gomock.NewController(t))
		gomock.InOrder(
			cache.EXPECT().Load(gomock.Any(), "view-1").Return([]byte(`{"user":`), nil),
			cache.EXPECT().Delete(gomock.Any(), "view-1").Return(errors.New("read only replica")),
		)

		v := newView(t, cache)
		assert.False(t, v.Session.RestoreSession(context.Background()))
		assert.Nil(t, v.Session.User())
	})
}

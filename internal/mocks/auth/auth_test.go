package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

func TestScriptedBackend_Defaults(t *testing.T) {
	b := NewScriptedBackend()
	ctx := context.Background()

	exist, err := b.CheckAccountsExist(ctx)
	require.NoError(t, err)
	assert.False(t, exist)

	res, err := b.Register(ctx, ports.RegisterInput{Username: "ana", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, &domainauth.Session{Username: "ana", Email: "a@example.com"}, res.User)

	_, err = b.Login(ctx, ports.LoginInput{Username: "ana"})
	require.NoError(t, err)
	_, err = b.Login(ctx, ports.LoginInput{Username: "ana"})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Calls("Login"))
	assert.Equal(t, 0, b.Calls("Logout"))
}

func TestScriptedBackend_CustomFunc(t *testing.T) {
	b := &ScriptedBackend{
		LogoutFunc: func(context.Context) (string, error) {
			return "", Rejected("logout", 500, "Session store down.")
		},
	}
	_, err := b.Logout(context.Background())
	assert.Equal(t, "Session store down.", domainauth.UserMessage(err, "Logout failed"))
}

func TestMemorySessionCache(t *testing.T) {
	c := NewMemorySessionCache()
	ctx := context.Background()

	_, err := c.Load(ctx, "v")
	require.ErrorIs(t, err, ports.ErrNotCached)

	require.NoError(t, c.Save(ctx, "v", []byte("x")))
	assert.True(t, c.Has("v"))

	c.DeleteErr = errors.New("down")
	require.Error(t, c.Delete(ctx, "v"))
	assert.True(t, c.Has("v"))

	c.DeleteErr = nil
	require.NoError(t, c.Delete(ctx, "v"))
	assert.False(t, c.Has("v"))
}

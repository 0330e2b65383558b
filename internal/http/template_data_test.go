package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
)

func TestBuildPageData(t *testing.T) {
	app := newTestApp(t)
	b := app.htmxBrowser(t)
	b.get("/")
	v := b.view()
	settings := pageSettings{MaxUploadBytes: 2048, AuthBase: "http://hr.test/api/auth"}

	anon := buildPageData(v, PageMeta{Title: "Sign in"}, settings)
	assert.Equal(t, v.ID, anon.ViewID)
	assert.Nil(t, anon.User)
	assert.Empty(t, anon.Sections, "the form is only built for signed-in views")
	assert.False(t, anon.ShowRegister())
	assert.True(t, anon.RegistrationEnabled)
	assert.Equal(t, int64(2048), anon.MaxUploadBytes)

	require.NoError(t, v.Gate.SwitchTab(domainauth.TabRegister))
	assert.True(t, buildPageData(v, PageMeta{}, settings).ShowRegister())

	b.signIn("alice")
	signed := buildPageData(v, PageMeta{Title: "Employee"}, settings)
	require.NotNil(t, signed.User)
	assert.Equal(t, "alice", signed.User.Username)
	assert.NotEmpty(t, signed.Sections)
}

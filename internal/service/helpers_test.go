package service

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/visorhr/visorhr-ui/internal/adapters/preview"
	authmocks "github.com/visorhr/visorhr-ui/internal/mocks/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
	"github.com/visorhr/visorhr-ui/internal/testutil"
)

type backendFactoryFunc func() (ports.AuthBackend, error)

func (f backendFactoryFunc) NewBackend() (ports.AuthBackend, error) { return f() }

type fixture struct {
	clock    *testutil.StubClock
	backend  *authmocks.ScriptedBackend
	cache    *authmocks.MemorySessionCache
	previews *preview.Registry
	registry *ViewRegistry
	built    atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:    testutil.FixedClock(),
		backend:  authmocks.NewScriptedBackend(),
		cache:    authmocks.NewMemorySessionCache(),
		previews: preview.NewRegistry(preview.Options{}),
	}
	f.registry = f.newRegistry(ViewRegistryOptions{})
	return f
}

// newRegistry fills in the fixture's dependencies on top of opts.
func (f *fixture) newRegistry(opts ViewRegistryOptions) *ViewRegistry {
	opts.Backends = backendFactoryFunc(func() (ports.AuthBackend, error) {
		f.built.Add(1)
		return f.backend, nil
	})
	opts.Cache = f.cache
	opts.Previews = f.previews
	opts.Clock = f.clock
	return NewViewRegistry(opts)
}

// view builds an unmounted view: no restore and no accounts check have run.
func (f *fixture) view(t *testing.T) *View {
	t.Helper()
	v, err := f.registry.build("view-1")
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

// viewWith builds an unmounted view around backend.
func (f *fixture) viewWith(t *testing.T, backend ports.AuthBackend) *View {
	t.Helper()
	r := NewViewRegistry(ViewRegistryOptions{
		Backends: backendFactoryFunc(func() (ports.AuthBackend, error) { return backend, nil }),
		Cache:    f.cache,
		Previews: f.previews,
		Clock:    f.clock,
	})
	v, err := r.build("view-1")
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

package httpx

import (
	"context"

	"github.com/visorhr/visorhr-ui/internal/service"
)

// viewKey is an unexported context key type to avoid collisions across packages.
type viewKey struct{}

// WithView returns a child context that carries the browser's view.
// If v is nil, the original ctx is returned unchanged.
func WithView(ctx context.Context, v *service.View) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, viewKey{}, v)
}

// ViewFromContext returns the view mounted for the request and a boolean indicating presence.
func ViewFromContext(ctx context.Context) (*service.View, bool) {
	v, ok := ctx.Value(viewKey{}).(*service.View)
	return v, ok && v != nil
}

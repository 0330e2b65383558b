// Package preview keeps the bytes of files selected into employee drafts so the
// browser can render them before anything is saved.
package preview

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

// DefaultPathPrefix is the route previews are served from.
const DefaultPathPrefix = "/previews/"

var ErrTooLarge = errors.New("preview exceeds size limit")

// Gauge receives the number of live handles after every change.
type Gauge interface {
	Set(float64)
}

type item struct {
	owner   string
	content ports.PreviewContent
}

// Registry is an in-memory ports.PreviewStore. Handles are ULIDs.
type Registry struct {
	mu      sync.Mutex
	items   map[string]item
	owners  map[string]map[string]struct{}
	prefix  string
	maxSize int64
	gauge   Gauge

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

var _ ports.PreviewStore = (*Registry)(nil)

// Options configures a Registry.
type Options struct {
	PathPrefix string
	// MaxBytes caps a single preview; zero disables the check.
	MaxBytes int64
	Gauge    Gauge
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	prefix := opts.PathPrefix
	if prefix == "" {
		prefix = DefaultPathPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Registry{
		items:   make(map[string]item),
		owners:  make(map[string]map[string]struct{}),
		prefix:  prefix,
		maxSize: opts.MaxBytes,
		gauge:   opts.Gauge,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (r *Registry) newID() (string, error) {
	r.entropyMu.Lock()
	defer r.entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), r.entropy)
	if err != nil {
		return "", fmt.Errorf("generate preview id: %w", err)
	}
	return id.String(), nil
}

func (r *Registry) Acquire(ctx context.Context, owner string, content ports.PreviewContent) (ports.PreviewRef, error) {
	if err := ctx.Err(); err != nil {
		return ports.PreviewRef{}, err
	}
	if owner == "" {
		return ports.PreviewRef{}, errors.New("preview owner cannot be empty")
	}
	if r.maxSize > 0 && int64(len(content.Data)) > r.maxSize {
		return ports.PreviewRef{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(content.Data))
	}
	id, err := r.newID()
	if err != nil {
		return ports.PreviewRef{}, err
	}

	content.Data = append([]byte(nil), content.Data...)

	r.mu.Lock()
	r.items[id] = item{owner: owner, content: content}
	set, ok := r.owners[owner]
	if !ok {
		set = make(map[string]struct{})
		r.owners[owner] = set
	}
	set[id] = struct{}{}
	live := len(r.items)
	r.mu.Unlock()

	r.report(live)
	return ports.PreviewRef{ID: id, URL: r.prefix + id}, nil
}

func (r *Registry) Release(id string) bool {
	r.mu.Lock()
	it, ok := r.items[id]
	if ok {
		r.dropLocked(it.owner, id)
	}
	live := len(r.items)
	r.mu.Unlock()

	if ok {
		r.report(live)
	}
	return ok
}

func (r *Registry) ReleaseOwner(owner string) int {
	r.mu.Lock()
	set := r.owners[owner]
	n := len(set)
	for id := range set {
		r.dropLocked(owner, id)
	}
	live := len(r.items)
	r.mu.Unlock()

	if n > 0 {
		r.report(live)
	}
	return n
}

func (r *Registry) dropLocked(owner, id string) {
	delete(r.items, id)
	if set, ok := r.owners[owner]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.owners, owner)
		}
	}
}

func (r *Registry) Open(owner, id string) (ports.PreviewContent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok || it.owner != owner {
		return ports.PreviewContent{}, false
	}
	return it.content, true
}

func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Registry) report(live int) {
	if r.gauge != nil {
		r.gauge.Set(float64(live))
	}
}

package service

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/visorhr/visorhr-ui/internal/ports"
)

// View is the client state of one browser: its session, registration gate, employee
// draft and status slot. Each view talks to the backend through its own AuthBackend so
// the backend session cookie stays with the browser that obtained it.
type View struct {
	ID      string
	Session *SessionController
	Gate    *AdminGateController
	Form    *FormEngine
	Status  *StatusChannel

	closeOnce sync.Once
}

// Logout signs out and, on success, tears down the employee editor.
func (v *View) Logout(ctx context.Context) error {
	if err := v.Session.Logout(ctx); err != nil {
		return err
	}
	return v.Form.Clear()
}

// Close unmounts the view. Completions that arrive afterwards do not change any state
// and every preview handle is released.
func (v *View) Close() {
	v.closeOnce.Do(func() {
		v.Session.close()
		v.Gate.close()
		v.Form.Close()
		v.Status.Close()
	})
}

// BackendFactory creates the backend client of a new view.
type BackendFactory interface {
	NewBackend() (ports.AuthBackend, error)
}

// ViewObserver records registry and status activity.
type ViewObserver interface {
	StatusObserver
	SetActiveViews(n int)
}

// ViewRegistryOptions groups dependencies for NewViewRegistry.
type ViewRegistryOptions struct {
	Backends  BackendFactory
	Cache     ports.SessionCache
	Previews  ports.PreviewStore
	Clock     ports.Clock
	StatusTTL time.Duration
	// IdleTTL unmounts views not touched for this long; zero keeps them until evicted by size.
	IdleTTL  time.Duration
	MaxViews int
	Observer ViewObserver
	Logger   *slog.Logger
}

// ViewRegistry holds mounted views in LRU order. Eviction, by size or idleness, is an
// unmount. Concurrent mounts of the same ID share one construction.
type ViewRegistry struct {
	opts   ViewRegistryOptions
	clock  ports.Clock
	logger *slog.Logger

	mu    sync.Mutex
	ll    *list.List // front = most recently used
	items map[string]*list.Element

	group singleflight.Group
}

type viewEntry struct {
	view     *View
	lastSeen time.Time
}

const defaultMaxViews = 10000

// NewViewRegistry creates an empty registry.
func NewViewRegistry(opts ViewRegistryOptions) *ViewRegistry {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.MaxViews <= 0 {
		opts.MaxViews = defaultMaxViews
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewRegistry{
		opts:   opts,
		clock:  opts.Clock,
		logger: logger,
		ll:     list.New(),
		items:  make(map[string]*list.Element),
	}
}

// NewViewID returns a fresh random view identifier.
func NewViewID() string {
	return uuid.NewString()
}

// ValidViewID reports whether id looks like an identifier issued by NewViewID.
func ValidViewID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// Get returns a mounted view and marks it used.
func (r *ViewRegistry) Get(id string) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.items[id]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*viewEntry)
	ent.lastSeen = r.clock.Now()
	r.ll.MoveToFront(el)
	return ent.view, true
}

// Mount returns the view for id, creating it if needed. A new view restores its
// persisted session and checks whether accounts exist before it is returned.
func (r *ViewRegistry) Mount(ctx context.Context, id string) (*View, error) {
	if v, ok := r.Get(id); ok {
		return v, nil
	}
	res, err, _ := r.group.Do(id, func() (any, error) {
		if v, ok := r.Get(id); ok {
			return v, nil
		}
		v, err := r.build(id)
		if err != nil {
			return nil, err
		}
		r.initialize(context.WithoutCancel(ctx), v)
		r.insert(v)
		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("mount view: %w", err)
	}
	return res.(*View), nil
}

func (r *ViewRegistry) build(id string) (*View, error) {
	if r.opts.Backends == nil {
		return nil, errors.New("no backend factory configured")
	}
	backend, err := r.opts.Backends.NewBackend()
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	logger := r.logger.With("view", id)

	var statusObserver StatusObserver
	if r.opts.Observer != nil {
		statusObserver = r.opts.Observer
	}
	status := NewStatusChannel(StatusOptions{Clock: r.clock, TTL: r.opts.StatusTTL, Observer: statusObserver, Logger: logger})
	gate := NewAdminGateController(AdminGateOptions{Backend: backend, Status: status, Logger: logger})
	return &View{
		ID:     id,
		Status: status,
		Gate:   gate,
		Session: NewSessionController(SessionOptions{
			Backend: backend,
			Cache:   r.opts.Cache,
			Scope:   id,
			Status:  status,
			Gate:    gate,
			Logger:  logger,
		}),
		Form: NewFormEngine(FormOptions{
			Owner:    id,
			Previews: r.opts.Previews,
			Status:   status,
			Clock:    r.clock,
			Logger:   logger,
		}),
	}, nil
}

// initialize runs the mount-time reads concurrently. Neither can fail the mount.
func (r *ViewRegistry) initialize(ctx context.Context, v *View) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v.Session.RestoreSession(gctx)
		return nil
	})
	g.Go(func() error {
		v.Session.CheckAccountsExist(gctx)
		return nil
	})
	_ = g.Wait()
}

func (r *ViewRegistry) insert(v *View) {
	var evicted []*View
	r.mu.Lock()
	el := r.ll.PushFront(&viewEntry{view: v, lastSeen: r.clock.Now()})
	r.items[v.ID] = el
	for r.ll.Len() > r.opts.MaxViews {
		evicted = append(evicted, r.removeLocked(r.ll.Back()))
	}
	n := r.ll.Len()
	r.mu.Unlock()

	r.closeAll(evicted, "capacity")
	r.report(n)
}

func (r *ViewRegistry) removeLocked(el *list.Element) *View {
	ent := el.Value.(*viewEntry)
	r.ll.Remove(el)
	delete(r.items, ent.view.ID)
	return ent.view
}

// Unmount closes and forgets the view.
func (r *ViewRegistry) Unmount(id string) bool {
	r.mu.Lock()
	el, ok := r.items[id]
	var v *View
	if ok {
		v = r.removeLocked(el)
	}
	n := r.ll.Len()
	r.mu.Unlock()

	if !ok {
		return false
	}
	v.Close()
	r.report(n)
	return true
}

// Sweep unmounts every view idle for longer than IdleTTL and returns how many.
func (r *ViewRegistry) Sweep() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-r.opts.IdleTTL)

	var evicted []*View
	r.mu.Lock()
	for el := r.ll.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*viewEntry).lastSeen.After(cutoff) {
			break
		}
		evicted = append(evicted, r.removeLocked(el))
		el = prev
	}
	n := r.ll.Len()
	r.mu.Unlock()

	r.closeAll(evicted, "idle")
	if len(evicted) > 0 {
		r.report(n)
	}
	return len(evicted)
}

// RunJanitor sweeps idle views every interval until ctx is done.
func (r *ViewRegistry) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.DebugContext(ctx, "unmounted idle views", "count", n)
			}
		}
	}
}

// Len returns the number of mounted views.
func (r *ViewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ll.Len()
}

// CloseAll unmounts every view.
func (r *ViewRegistry) CloseAll() {
	r.mu.Lock()
	views := make([]*View, 0, len(r.items))
	for el := r.ll.Front(); el != nil; el = el.Next() {
		views = append(views, el.Value.(*viewEntry).view)
	}
	r.ll.Init()
	clear(r.items)
	r.mu.Unlock()

	r.closeAll(views, "shutdown")
	r.report(0)
}

func (r *ViewRegistry) closeAll(views []*View, reason string) {
	for _, v := range views {
		v.Close()
		r.logger.Debug("view unmounted", "view", v.ID, "reason", reason)
	}
}

func (r *ViewRegistry) report(n int) {
	if r.opts.Observer != nil {
		r.opts.Observer.SetActiveViews(n)
	}
}

package service

import "sync"

// Store is an explicit state container. Every transition goes through Dispatch or
// Apply, subscribers see each resulting snapshot in order, and once closed the
// store rejects further transitions with ErrViewClosed.
type Store[S any] struct {
	mu     sync.Mutex
	state  S
	closed bool
	subs   map[int]func(S)
	nextID int
}

// NewStore creates a store holding initial.
func NewStore[S any](initial S) *Store[S] {
	return &Store[S]{state: initial, subs: make(map[int]func(S))}
}

// Get returns the current snapshot.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a pure transition.
func (s *Store[S]) Dispatch(fn func(S) S) (S, error) {
	return s.Apply(func(cur S) (S, error) { return fn(cur), nil })
}

// Apply applies a transition that may refuse. A refusal leaves the state untouched
// and notifies nobody.
func (s *Store[S]) Apply(fn func(S) (S, error)) (S, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrViewClosed
	}
	next, err := fn(s.state)
	if err != nil {
		return s.state, err
	}
	s.state = next
	// Subscribers run under the lock so they observe transitions in order.
	// They must not call back into the store.
	for _, fn := range s.subs {
		fn(next)
	}
	return next, nil
}

// Subscribe registers fn for every future snapshot and returns its cancel func.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close rejects further transitions and drops every subscriber.
func (s *Store[S]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	clear(s.subs)
}

// Closed reports whether Close was called.
func (s *Store[S]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

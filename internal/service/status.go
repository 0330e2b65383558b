package service

import (
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

// DefaultStatusTTL is how long a message stays visible after it was last set.
const DefaultStatusTTL = 3 * time.Second

// StatusObserver counts shown messages.
type StatusObserver interface {
	StatusShown(kind string)
}

// StatusOptions groups dependencies for NewStatusChannel.
type StatusOptions struct {
	Clock    ports.Clock
	TTL      time.Duration
	Observer StatusObserver
	Logger   *slog.Logger
}

// StatusChannel is the single user-visible message slot shared by every operation of a view.
//
// Writes are last-write-wins in resolution order. Each write carries the next sequence
// number and re-arms the auto-clear timer; a timer only clears the message it was armed
// for, so an older timer never clears a newer message. A stale completion still
// overwrites a newer message; that race is kept as is.
type StatusChannel struct {
	store    *Store[domainauth.StatusMessage]
	clock    ports.Clock
	ttl      time.Duration
	observer StatusObserver
	logger   *slog.Logger

	mu    sync.Mutex
	timer ports.Timer
}

// NewStatusChannel creates an empty status slot.
func NewStatusChannel(opts StatusOptions) *StatusChannel {
	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusChannel{
		store:    NewStore(domainauth.StatusMessage{}),
		clock:    clock,
		ttl:      ttl,
		observer: opts.Observer,
		logger:   logger,
	}
}

// Success shows a success message.
func (c *StatusChannel) Success(text string) { c.set(domainauth.StatusSuccess, text) }

// Error shows an error message.
func (c *StatusChannel) Error(text string) { c.set(domainauth.StatusError, text) }

// Clear empties the slot immediately.
func (c *StatusChannel) Clear() { c.set(domainauth.StatusNone, "") }

func (c *StatusChannel) set(kind domainauth.StatusKind, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	msg, err := c.store.Dispatch(func(cur domainauth.StatusMessage) domainauth.StatusMessage {
		return domainauth.StatusMessage{Kind: kind, Text: text, Seq: cur.Seq + 1, SetAt: now}
	})
	if err != nil {
		return
	}

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if msg.Empty() {
		return
	}
	if c.observer != nil {
		c.observer.StatusShown(string(kind))
	}
	if kind == domainauth.StatusError {
		c.logger.Debug("status error shown", "text", text, "seq", msg.Seq)
	}
	seq := msg.Seq
	c.timer = c.clock.AfterFunc(c.ttl, func() { c.expire(seq) })
}

// expire clears the slot only if it still holds message seq.
func (c *StatusChannel) expire(seq uint64) {
	_, _ = c.store.Apply(func(cur domainauth.StatusMessage) (domainauth.StatusMessage, error) {
		if cur.Seq != seq {
			return cur, errNoChange
		}
		return domainauth.StatusMessage{Seq: cur.Seq}, nil
	})
}

// Current returns the message being shown.
func (c *StatusChannel) Current() domainauth.StatusMessage {
	return c.store.Get()
}

// Subscribe registers fn for every change of the slot.
func (c *StatusChannel) Subscribe(fn func(domainauth.StatusMessage)) func() {
	return c.store.Subscribe(fn)
}

// Close stops the pending timer and ignores later writes.
func (c *StatusChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.store.Close()
}

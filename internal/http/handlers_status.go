package httpx

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
)

// Status handles GET /status and renders the status slot fragment.
func (h *UIHandlers) Status(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if err := h.T.RenderPartial(w, tmplStatus, v.Status.Current()); err != nil {
		h.logger().ErrorContext(r.Context(), "render status failed", "error", err)
	}
}

// StatusStream handles GET /status/stream: a server-sent event stream that pushes the
// status fragment every time the view's status slot changes. The stream ends when the
// client goes away, the view is unmounted or the server starts shutting down.
func (h *UIHandlers) StatusStream(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	rc := http.NewResponseController(w)

	updates := make(chan domainauth.StatusMessage, 1)
	cancel := v.Status.Subscribe(func(m domainauth.StatusMessage) { offerLatest(updates, m) })
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := h.sendStatus(w, rc, v.Status.Current()); err != nil {
		return
	}

	interval := h.KeepAlive
	if interval <= 0 {
		interval = defaultKeepAlive
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.Closing:
			return
		case m := <-updates:
			if err := h.sendStatus(w, rc, m); err != nil {
				h.logger().DebugContext(ctx, "status stream closed", "view", v.ID, "error", err)
				return
			}
		case <-ticker.C:
			if h.Views != nil {
				if cur, live := h.Views.Get(v.ID); !live || cur != v {
					h.logger().DebugContext(ctx, "status stream closed", "view", v.ID, "error", errViewGone)
					return
				}
			}
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func (h *UIHandlers) sendStatus(w http.ResponseWriter, rc *http.ResponseController, m domainauth.StatusMessage) error {
	var buf bytes.Buffer
	if err := h.T.Execute(&buf, tmplStatus, m); err != nil {
		return err
	}
	if err := writeEvent(w, "status", m.Seq, buf.String()); err != nil {
		return err
	}
	return rc.Flush()
}

// writeEvent writes one SSE event; every payload line gets its own data field.
func writeEvent(w http.ResponseWriter, event string, id uint64, payload string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\nid: %d\n", event, id)
	for _, line := range strings.Split(strings.TrimRight(payload, "\n"), "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimRight(line, "\r"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := fmt.Fprint(w, b.String())
	return err
}

// offerLatest replaces any unsent message with m without blocking; subscribers run
// under the status lock.
func offerLatest(ch chan domainauth.StatusMessage, m domainauth.StatusMessage) {
	for {
		select {
		case ch <- m:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

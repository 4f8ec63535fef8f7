// Package live implements the WebSocket transport for real-time
// notifications: connection upgrade, the identify/disconnect protocol that
// feeds the presence registry, and best-effort delivery to a single handle.
package live

import (
	"log/slog"

	"github.com/Activit123/job-matching-platform/internal/presence"
)

// Channel delivers an event to one live connection, best-effort.
// A push is attempted exactly once: no retry, no queue, no error surfaced.
// Durability lives in the notification store, not here.
type Channel struct{}

// NewChannel returns a Channel.
func NewChannel() *Channel { return &Channel{} }

// Push sends event/payload to h. Failures (stale or closed connections, full
// send buffers) are logged and swallowed — callers never block on delivery
// and never observe an error.
func (c *Channel) Push(h presence.Handle, event string, payload any) {
	if h == nil {
		return
	}
	if err := h.Emit(event, payload); err != nil {
		slog.Warn("live push dropped", "event", event, "err", err)
	}
}

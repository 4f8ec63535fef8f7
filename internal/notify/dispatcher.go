package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Activit123/job-matching-platform/internal/presence"
)

// EventNotification is the event name used for both the live push frame and
// the Redis channel carrying notification events.
const EventNotification = "notification"

// Writer is the persistence half of a dispatch.
type Writer interface {
	Append(ctx context.Context, userID, message string) error
}

// Pusher delivers an event to one live handle, best-effort.
type Pusher interface {
	Push(h presence.Handle, event string, payload any)
}

// Dispatcher composes the notification store, the presence registry and the
// live delivery channel into a single persist-then-push call.
type Dispatcher struct {
	store    Writer
	registry *presence.Registry
	pusher   Pusher
	rdb      *redis.Client // optional event bridge, may be nil
}

// NewDispatcher returns a Dispatcher. rdb may be nil when no event bridge is
// configured (e.g. in tests); publishing is then skipped.
func NewDispatcher(store Writer, registry *presence.Registry, pusher Pusher, rdb *redis.Client) *Dispatcher {
	return &Dispatcher{store: store, registry: registry, pusher: pusher, rdb: rdb}
}

// payload is what the client receives on the notification event.
type payload struct {
	Message string `json:"message"`
}

// Notify persists the message for userID and, when that user is online,
// pushes it over their live connection.
//
// Nothing here ever fails the caller: a failed store write is logged and
// swallowed (a broken notification must never break the application-lifecycle
// operation that triggered it), the push is fire-and-forget, and an offline
// target is skipped silently — the user retrieves the stored notification on
// their next read.
func (d *Dispatcher) Notify(ctx context.Context, userID, message string) {
	if err := d.store.Append(ctx, userID, message); err != nil {
		slog.Warn("notification write failed", "userId", userID, "err", err)
	}

	d.publishEvent(ctx, userID, message)

	h, online := d.registry.Lookup(userID)
	if !online {
		return
	}
	d.pusher.Push(h, EventNotification, payload{Message: message})
}

// publishEvent mirrors the notification onto Redis for external consumers
// (gateway SSE, audit). Non-fatal.
func (d *Dispatcher) publishEvent(ctx context.Context, userID, message string) {
	if d.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":    "EVENT_NOTIFICATION",
		"userId":  userID,
		"message": message,
	})
	if err := d.rdb.Publish(ctx, "EVENT_NOTIFICATION", event).Err(); err != nil {
		slog.Warn("publish EVENT_NOTIFICATION failed", "err", err)
	}
}

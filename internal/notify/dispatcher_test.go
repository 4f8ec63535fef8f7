package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Activit123/job-matching-platform/internal/notify"
	"github.com/Activit123/job-matching-platform/internal/presence"
)

// ── Fakes ─────────────────────────────────────────────────────────────────

type fakeWriter struct {
	appended []string // "userID|message"
	err      error
}

func (f *fakeWriter) Append(_ context.Context, userID, message string) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, userID+"|"+message)
	return nil
}

type fakeHandle struct{}

func (f *fakeHandle) Emit(event string, payload any) error { return nil }

type recordingPusher struct {
	pushes []string // event names, one per Push call
	lastTo presence.Handle
}

func (r *recordingPusher) Push(h presence.Handle, event string, payload any) {
	r.pushes = append(r.pushes, event)
	r.lastTo = h
}

// ── Durability ────────────────────────────────────────────────────────────

// Notify stores exactly one notification whether or not the target is online.
func TestNotify_AlwaysPersists(t *testing.T) {
	for _, online := range []bool{true, false} {
		writer := &fakeWriter{}
		registry := presence.NewRegistry()
		if online {
			registry.Register("user-1", &fakeHandle{})
		}
		d := notify.NewDispatcher(writer, registry, &recordingPusher{}, nil)

		d.Notify(context.Background(), "user-1", "you have mail")

		if len(writer.appended) != 1 {
			t.Errorf("online=%v: stored %d notifications, want exactly 1", online, len(writer.appended))
		}
		if len(writer.appended) == 1 && writer.appended[0] != "user-1|you have mail" {
			t.Errorf("online=%v: stored %q", online, writer.appended[0])
		}
	}
}

// A failed store write must be swallowed — Notify never panics or surfaces
// the failure, and the live push is still attempted.
func TestNotify_StoreFailureIsSwallowed(t *testing.T) {
	writer := &fakeWriter{err: errors.New("disk full")}
	registry := presence.NewRegistry()
	registry.Register("user-1", &fakeHandle{})
	pusher := &recordingPusher{}
	d := notify.NewDispatcher(writer, registry, pusher, nil)

	d.Notify(context.Background(), "user-1", "hello")

	if len(pusher.pushes) != 1 {
		t.Errorf("pushes = %d, want 1 even when the store write fails", len(pusher.pushes))
	}
}

// ── Push conditionality ───────────────────────────────────────────────────

func TestNotify_PushesOnlyWhenPresent(t *testing.T) {
	writer := &fakeWriter{}
	registry := presence.NewRegistry()
	h := &fakeHandle{}
	registry.Register("user-1", h)
	pusher := &recordingPusher{}
	d := notify.NewDispatcher(writer, registry, pusher, nil)

	d.Notify(context.Background(), "user-1", "ping")

	if len(pusher.pushes) != 1 {
		t.Fatalf("pushes = %d, want exactly 1 for a present target", len(pusher.pushes))
	}
	if pusher.pushes[0] != notify.EventNotification {
		t.Errorf("event = %q, want %q", pusher.pushes[0], notify.EventNotification)
	}
	if pusher.lastTo != presence.Handle(h) {
		t.Error("push went to a different handle than the registered one")
	}
}

func TestNotify_SkipsPushWhenAbsent(t *testing.T) {
	writer := &fakeWriter{}
	pusher := &recordingPusher{}
	d := notify.NewDispatcher(writer, presence.NewRegistry(), pusher, nil)

	d.Notify(context.Background(), "offline-user", "ping")

	if len(pusher.pushes) != 0 {
		t.Errorf("pushes = %d, want 0 for an absent target", len(pusher.pushes))
	}
	if len(writer.appended) != 1 {
		t.Errorf("stored = %d, want 1 (persistence is unconditional)", len(writer.appended))
	}
}

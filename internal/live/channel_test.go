package live_test

import (
	"errors"
	"testing"

	"github.com/Activit123/job-matching-platform/internal/live"
)

type flakyHandle struct {
	emits int
	err   error
}

func (f *flakyHandle) Emit(event string, payload any) error {
	f.emits++
	return f.err
}

func TestPush_DeliversOnce(t *testing.T) {
	h := &flakyHandle{}
	live.NewChannel().Push(h, "notification", map[string]string{"message": "hi"})

	if h.emits != 1 {
		t.Errorf("emits = %d, want exactly 1 (no retries)", h.emits)
	}
}

// A failing handle must not surface anywhere — the push is fire-and-forget.
func TestPush_SwallowsEmitErrors(t *testing.T) {
	h := &flakyHandle{err: errors.New("connection closed")}
	live.NewChannel().Push(h, "notification", nil)

	if h.emits != 1 {
		t.Errorf("emits = %d, want 1", h.emits)
	}
}

func TestPush_NilHandleIsNoOp(t *testing.T) {
	// Must not panic.
	live.NewChannel().Push(nil, "notification", nil)
}

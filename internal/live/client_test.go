package live

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestEmit_BuildsEnvelope(t *testing.T) {
	c := newClient(nil)

	if err := c.Emit("notification", map[string]string{"message": "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame := <-c.send
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if env.Event != "notification" {
		t.Errorf("event = %q, want %q", env.Event, "notification")
	}

	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data is not valid JSON: %v", err)
	}
	if data["message"] != "hi" {
		t.Errorf("data = %v, want message=hi", data)
	}
}

// Emit must never block the caller: once the buffer is full, frames are
// dropped with an error instead of queueing indefinitely.
func TestEmit_DropsWhenBufferFull(t *testing.T) {
	c := newClient(nil)

	for i := 0; i < sendBufferSize; i++ {
		if err := c.Emit("notification", i); err != nil {
			t.Fatalf("Emit(%d) failed before the buffer was full: %v", i, err)
		}
	}

	if err := c.Emit("notification", "overflow"); err == nil {
		t.Error("Emit on a full buffer should report the dropped frame")
	}
	if len(c.send) != sendBufferSize {
		t.Errorf("buffered frames = %d, want %d", len(c.send), sendBufferSize)
	}
}

// A push arriving after the connection tore down must fail with an error,
// never panic — the registry can hand out a handle whose connection is
// already gone.
func TestEmit_AfterCloseFailsSilently(t *testing.T) {
	c := newClient(nil)
	c.closeSend()

	if err := c.Emit("notification", "late frame"); err == nil {
		t.Error("Emit on a closed connection should report the dropped frame")
	}
}

func TestCloseSend_Idempotent(t *testing.T) {
	c := newClient(nil)
	// Shutdown and untrack can both reach the same client; closing twice
	// must not panic.
	c.closeSend()
	c.closeSend()
}

// Emit racing the close must never hit the closed channel.
func TestEmit_ConcurrentWithClose(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := newClient(nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Emit("notification", "racing frame")
		}()
		go func() {
			defer wg.Done()
			c.closeSend()
		}()
		wg.Wait()
	}
}

func TestEmit_RejectsUnmarshalablePayload(t *testing.T) {
	c := newClient(nil)

	if err := c.Emit("notification", make(chan int)); err == nil {
		t.Error("Emit should fail for a payload that cannot be marshalled")
	}
	if len(c.send) != 0 {
		t.Error("failed Emit must not enqueue a frame")
	}
}

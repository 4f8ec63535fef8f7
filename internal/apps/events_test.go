package apps

import (
	"encoding/json"
	"testing"
)

// The published transition must carry the status the row actually held
// before the change, not an assumed one — an overwritten decision moves
// from approved or denied, not from pending.
func TestMovedEvent_CarriesRealTransition(t *testing.T) {
	raw := movedEvent("app-1", "stu-1", string(StatusApproved), string(StatusDenied))

	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("event is not valid JSON: %v", err)
	}
	if got["type"] != "EVENT_APPLICATION_MOVED" {
		t.Errorf("type = %q, want EVENT_APPLICATION_MOVED", got["type"])
	}
	if got["from"] != "approved" || got["to"] != "denied" {
		t.Errorf("transition = %q to %q, want approved to denied", got["from"], got["to"])
	}
	if got["applicationId"] != "app-1" || got["studentId"] != "stu-1" {
		t.Errorf("ids = %q/%q, want app-1/stu-1", got["applicationId"], got["studentId"])
	}
}

func TestMovedEvent_EmptyFromOnFirstApplication(t *testing.T) {
	raw := movedEvent("app-1", "stu-1", "", string(StatusPending))

	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("event is not valid JSON: %v", err)
	}
	if got["from"] != "" || got["to"] != "pending" {
		t.Errorf("transition = %q to %q, want empty to pending", got["from"], got["to"])
	}
}

package apps_test

import (
	"strings"
	"testing"

	"github.com/Activit123/job-matching-platform/internal/apps"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"pending", "approved", "denied"}
	for _, s := range valid {
		got, err := apps.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValues(t *testing.T) {
	invalid := []string{"", "PENDING", "accepted", " pending"}
	for _, s := range invalid {
		if _, err := apps.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── Decision / active predicates ──────────────────────────────────────────

func TestIsDecision(t *testing.T) {
	if !apps.IsDecision(apps.StatusApproved) || !apps.IsDecision(apps.StatusDenied) {
		t.Error("approved and denied are the only valid employer decisions")
	}
	if apps.IsDecision(apps.StatusPending) {
		t.Error("pending is not an employer decision")
	}
}

func TestIsActive(t *testing.T) {
	if !apps.IsActive(apps.StatusPending) || !apps.IsActive(apps.StatusApproved) {
		t.Error("pending and approved applications block re-application")
	}
	if apps.IsActive(apps.StatusDenied) {
		t.Error("a denied application must allow re-application")
	}
}

// ── Notification templates ────────────────────────────────────────────────

func TestNewApplicationMessage(t *testing.T) {
	got := apps.NewApplicationMessage("Ada")
	if got != "You have a new job application from Ada." {
		t.Errorf("NewApplicationMessage = %q", got)
	}
}

func TestReapplyMessage(t *testing.T) {
	got := apps.ReapplyMessage("Ada")
	if got != "Ada has re-applied for a position." {
		t.Errorf("ReapplyMessage = %q", got)
	}
}

func TestDecisionMessage_Approved(t *testing.T) {
	got := apps.DecisionMessage("Acme", apps.StatusApproved)
	if !strings.HasPrefix(got, "Congratulations!") || !strings.Contains(got, "Acme") {
		t.Errorf("DecisionMessage(approved) = %q", got)
	}
}

func TestDecisionMessage_Denied(t *testing.T) {
	got := apps.DecisionMessage("Acme", apps.StatusDenied)
	if got != "Your application to Acme was updated to 'denied'." {
		t.Errorf("DecisionMessage(denied) = %q", got)
	}
}

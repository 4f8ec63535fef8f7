// Package apps implements the application lifecycle between students and
// employers: create, re-apply after a denial, and the employer's decision.
// Every state change triggers a notification through the dispatcher.
//
// Status graph:
//
//	pending ──► approved
//	    │
//	    └─────► denied ──► pending (re-application)
package apps

import "fmt"

// Status values mirror the application status column in PostgreSQL.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// ParseStatus converts a raw string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusApproved, StatusDenied:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsDecision reports whether s is a valid employer decision. Employers can
// only approve or deny — they never set an application back to pending.
func IsDecision(s Status) bool {
	return s == StatusApproved || s == StatusDenied
}

// IsActive reports whether s blocks a new application for the same pair:
// a pending or approved application must not be duplicated. Only a denied
// application can be re-submitted.
func IsActive(s Status) bool {
	return s == StatusPending || s == StatusApproved
}

// ─── Notification templates ──────────────────────────────────────────────────

// NewApplicationMessage is sent to the employer when a student first applies.
func NewApplicationMessage(studentName string) string {
	return fmt.Sprintf("You have a new job application from %s.", studentName)
}

// ReapplyMessage is sent to the employer when a previously denied student
// applies again.
func ReapplyMessage(studentName string) string {
	return fmt.Sprintf("%s has re-applied for a position.", studentName)
}

// DecisionMessage is sent to the student when the employer decides.
func DecisionMessage(employerName string, decision Status) string {
	if decision == StatusApproved {
		return fmt.Sprintf("Congratulations! Your application to %s has been approved.", employerName)
	}
	return fmt.Sprintf("Your application to %s was updated to '%s'.", employerName, decision)
}

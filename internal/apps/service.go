package apps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Activit123/job-matching-platform/internal/directory"
)

// Application is the JSON shape returned to clients. CounterpartName is the
// employer's name when a student lists, the student's name when an employer
// lists. Skills are only populated on the employer's view.
type Application struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"studentId"`
	EmployerID      string     `json:"employerId"`
	Status          string     `json:"status"`
	Motivation      *string    `json:"motivation"`
	CounterpartName string     `json:"counterpartName,omitempty"`
	Skills          []string   `json:"skills,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Notifier is the auxiliary notification path. It has no error return on
// purpose: notification failures never surface to lifecycle callers.
type Notifier interface {
	Notify(ctx context.Context, userID, message string)
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when an application is missing or not owned by the
// caller.
var ErrNotFound = errors.New("application not found")

// ErrForbidden is returned when the caller's role does not permit the
// operation (only students apply, only employers decide).
var ErrForbidden = errors.New("operation not permitted for this role")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates application-lifecycle logic. It is transport-agnostic
// and owns the only write path to the applications table.
type Service struct {
	pool     *pgxpool.Pool
	notifier Notifier
	rdb      *redis.Client // optional event bridge, may be nil
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool, notifier Notifier, rdb *redis.Client) *Service {
	return &Service{pool: pool, notifier: notifier, rdb: rdb}
}

// Create submits a new application from student to employerID, or re-submits
// a previously denied one. A pending or approved application for the same
// pair is rejected. The employer is notified either way.
func (s *Service) Create(ctx context.Context, student *directory.Profile, employerID string) (*Application, error) {
	if student.Role != directory.RoleStudent {
		return nil, ErrForbidden
	}
	if employerID == "" {
		return nil, &ValidationError{Msg: "employerId is required"}
	}

	var (
		existingID     string
		existingStatus string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, status FROM applications WHERE student_id = $1 AND employer_id = $2`,
		student.ID, employerID,
	).Scan(&existingID, &existingStatus)

	switch {
	case err == nil:
		status, parseErr := ParseStatus(existingStatus)
		if parseErr != nil {
			return nil, fmt.Errorf("create: %w", parseErr)
		}
		if IsActive(status) {
			return nil, &ValidationError{Msg: "you already have an active or approved application with this company"}
		}
		return s.reapply(ctx, student, existingID, employerID)

	case errors.Is(err, pgx.ErrNoRows):
		// No prior application — fall through to insert.

	default:
		return nil, fmt.Errorf("create lookup: %w", err)
	}

	var app Application
	err = s.pool.QueryRow(ctx,
		`INSERT INTO applications (student_id, employer_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING id, student_id, employer_id, status, motivation, created_at, updated_at`,
		student.ID, employerID,
	).Scan(&app.ID, &app.StudentID, &app.EmployerID, &app.Status, &app.Motivation,
		&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create insert: %w", err)
	}

	s.notifier.Notify(ctx, employerID, NewApplicationMessage(student.Name))
	s.publishMoved(ctx, app.ID, student.ID, "", string(StatusPending))
	return &app, nil
}

// reapply resets a denied application back to pending and clears the old
// motivation.
func (s *Service) reapply(ctx context.Context, student *directory.Profile, appID, employerID string) (*Application, error) {
	var app Application
	err := s.pool.QueryRow(ctx,
		`UPDATE applications
		 SET status = 'pending', motivation = NULL, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, student_id, employer_id, status, motivation, created_at, updated_at`,
		appID,
	).Scan(&app.ID, &app.StudentID, &app.EmployerID, &app.Status, &app.Motivation,
		&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reapply update: %w", err)
	}

	s.notifier.Notify(ctx, employerID, ReapplyMessage(student.Name))
	s.publishMoved(ctx, app.ID, student.ID, string(StatusDenied), string(StatusPending))
	return &app, nil
}

// List returns the caller's applications. Students see the employer name and
// sort by latest update; employers see the student name plus skills and sort
// by submission time.
func (s *Service) List(ctx context.Context, userID string, role directory.Role) ([]Application, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if role == directory.RoleStudent {
		rows, err = s.pool.Query(ctx,
			`SELECT a.id, a.student_id, a.employer_id, a.status, a.motivation,
			        u.name, a.created_at, a.updated_at
			 FROM applications a
			 JOIN users u ON u.id = a.employer_id
			 WHERE a.student_id = $1
			 ORDER BY a.updated_at DESC`,
			userID,
		)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT a.id, a.student_id, a.employer_id, a.status, a.motivation,
			        u.name, COALESCE(u.skills, '{}'), a.created_at, a.updated_at
			 FROM applications a
			 JOIN users u ON u.id = a.student_id
			 WHERE a.employer_id = $1
			 ORDER BY a.created_at DESC`,
			userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		var a Application
		if role == directory.RoleStudent {
			err = rows.Scan(&a.ID, &a.StudentID, &a.EmployerID, &a.Status, &a.Motivation,
				&a.CounterpartName, &a.CreatedAt, &a.UpdatedAt)
		} else {
			err = rows.Scan(&a.ID, &a.StudentID, &a.EmployerID, &a.Status, &a.Motivation,
				&a.CounterpartName, &a.Skills, &a.CreatedAt, &a.UpdatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdateStatus records the employer's decision on an application they own
// and notifies the student. Denials require a motivation.
func (s *Service) UpdateStatus(ctx context.Context, employer *directory.Profile, appID, statusStr, motivation string) (*Application, error) {
	if employer.Role != directory.RoleEmployer {
		return nil, ErrForbidden
	}

	status, err := ParseStatus(statusStr)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if !IsDecision(status) {
		return nil, &ValidationError{Msg: fmt.Sprintf("status must be %q or %q", StatusApproved, StatusDenied)}
	}
	if status == StatusDenied && motivation == "" {
		return nil, &ValidationError{Msg: "a motivation is required when denying an application"}
	}

	var motivationParam *string
	if motivation != "" {
		motivationParam = &motivation
	}

	// The locked sub-select returns the status the row held before this
	// decision, so the published transition reflects what actually changed
	// even when an earlier decision is being overwritten.
	var (
		app        Application
		prevStatus string
	)
	err = s.pool.QueryRow(ctx,
		`UPDATE applications a
		 SET status = $1, motivation = $2, updated_at = NOW()
		 FROM (SELECT id, status FROM applications
		       WHERE id = $3 AND employer_id = $4 FOR UPDATE) prev
		 WHERE a.id = prev.id
		 RETURNING a.id, a.student_id, a.employer_id, a.status, a.motivation,
		           a.created_at, a.updated_at, prev.status`,
		string(status), motivationParam, appID, employer.ID,
	).Scan(&app.ID, &app.StudentID, &app.EmployerID, &app.Status, &app.Motivation,
		&app.CreatedAt, &app.UpdatedAt, &prevStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updateStatus: %w", err)
	}

	s.notifier.Notify(ctx, app.StudentID, DecisionMessage(employer.Name, status))
	s.publishMoved(ctx, app.ID, app.StudentID, prevStatus, string(status))
	return &app, nil
}

// publishMoved mirrors a lifecycle transition onto Redis for external
// consumers. Non-fatal.
func (s *Service) publishMoved(ctx context.Context, appID, studentID, from, to string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Publish(ctx, "EVENT_APPLICATION_MOVED", movedEvent(appID, studentID, from, to)).Err(); err != nil {
		slog.Warn("publish EVENT_APPLICATION_MOVED failed", "err", err)
	}
}

// movedEvent builds the EVENT_APPLICATION_MOVED payload. from is empty for a
// first-time application; otherwise it is the status the row actually held
// before the change.
func movedEvent(appID, studentID, from, to string) []byte {
	event, _ := json.Marshal(map[string]string{
		"type":          "EVENT_APPLICATION_MOVED",
		"applicationId": appID,
		"studentId":     studentID,
		"from":          from,
		"to":            to,
	})
	return event
}

// Package notify persists notifications and dispatches them to connected
// clients. Persistence is the durability layer; the live push on top of it
// is a best-effort optimisation.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification is one stored message for a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists notifications in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Append records a notification for userID.
func (s *Store) Append(ctx context.Context, userID, message string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (user_id, message) VALUES ($1, $2)`,
		userID, message,
	)
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

// ListUnread returns the user's unread notifications, newest first.
func (s *Store) ListUnread(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, message, is_read, created_at
		 FROM notifications
		 WHERE user_id = $1 AND is_read = false
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listUnread query: %w", err)
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("listUnread scan: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags a single notification as read, validating ownership.
// It reports whether a row was updated.
func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("markRead: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PurgeRead deletes read notifications created before the cutoff. Used by
// the maintenance sweep; unread notifications are never purged.
func (s *Store) PurgeRead(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE is_read = true AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purgeRead: %w", err)
	}
	return tag.RowsAffected(), nil
}

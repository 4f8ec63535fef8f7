// Package maintenance runs the periodic cleanup of old read notifications.
package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger deletes read notifications created before the cutoff.
type Purger interface {
	PurgeRead(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper wraps robfig/cron and deletes read notifications older than the
// retention window. Unread notifications are never touched — they stay until
// the user reads them.
type Sweeper struct {
	cron      *cron.Cron
	purger    Purger
	retention time.Duration
}

// New creates a Sweeper keeping read notifications for retentionDays.
func New(purger Purger, retentionDays int) *Sweeper {
	return &Sweeper{
		cron:      cron.New(),
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start registers the daily sweep and runs one immediately so a restart
// never postpones cleanup by a full day.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("@every 24h", func() { s.sweep(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[maintenance] Sweep scheduled — retention %s", s.retention)

	go s.sweep(ctx)
	return nil
}

// Stop shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[maintenance] Sweep stopped")
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.purger.PurgeRead(ctx, cutoff)
	if err != nil {
		log.Printf("[maintenance] PurgeRead error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[maintenance] Purged %d read notification(s) older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}

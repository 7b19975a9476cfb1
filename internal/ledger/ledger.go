// Package ledger is the durable "already sent" set behind notification
// dedup. One row per unique (team, title, message) triple for the lifetime
// of the store — this is the at-most-once delivery contract, not a cache.
package ledger

import (
	"context"
	"time"
)

// Entry is one sent-notification record.
type Entry struct {
	TeamID  int       `json:"team_id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Store is the dedup ledger. Implementations must make Record atomic under
// concurrent callers: two senders racing on the same triple must see exactly
// one true result between them.
type Store interface {
	// Seen reports whether the triple has already been recorded.
	Seen(ctx context.Context, teamID int, title, message string) (bool, error)

	// Record inserts the triple, returning false when a concurrent or
	// earlier insert already holds it. A false return is not an error.
	Record(ctx context.Context, teamID int, title, message string, sentAt time.Time) (bool, error)

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

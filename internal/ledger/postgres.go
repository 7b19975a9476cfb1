package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the production Store backed by the sent_notifications table.
// Statements are prepared by the db package on every connection.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed ledger.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Seen reports whether the triple has already been recorded.
func (s *Postgres) Seen(ctx context.Context, teamID int, title, message string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, "ledger_seen", teamID, title, message).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger seen: %w", err)
	}
	return true, nil
}

// Record inserts the triple. The UNIQUE constraint makes a losing racer's
// insert a no-op; that shows up as zero rows affected and is reported as
// recorded=false rather than an error.
func (s *Postgres) Record(ctx context.Context, teamID int, title, message string, sentAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, "ledger_record", teamID, title, message, sentAt)
	if err != nil {
		return false, fmt.Errorf("ledger record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Recent returns up to limit entries, newest first.
func (s *Postgres) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, "ledger_recent", limit)
	if err != nil {
		return nil, fmt.Errorf("ledger recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TeamID, &e.Title, &e.Message, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is a mutex-guarded in-memory Store. Used by tests and by sweep runs
// without a database; loses history on restart, so serve always uses Postgres.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func key(teamID int, title, message string) string {
	return fmt.Sprintf("%d\x00%s\x00%s", teamID, title, message)
}

// Seen reports whether the triple has already been recorded.
func (s *Memory) Seen(ctx context.Context, teamID int, title, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key(teamID, title, message)]
	return ok, nil
}

// Record inserts the triple, returning false when it is already held.
func (s *Memory) Record(ctx context.Context, teamID int, title, message string, sentAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(teamID, title, message)
	if _, ok := s.entries[k]; ok {
		return false, nil
	}
	s.entries[k] = Entry{TeamID: teamID, Title: title, Message: message, SentAt: sentAt}
	return true, nil
}

// Recent returns up to limit entries, newest first.
func (s *Memory) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SentAt.After(entries[j].SentAt) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

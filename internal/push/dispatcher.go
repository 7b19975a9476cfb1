package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ftcvanguard/vanguard-alerts/internal/ledger"
)

// Outcome classifies one dispatch attempt.
type Outcome int

const (
	// OutcomeSent: delivered and recorded in the ledger.
	OutcomeSent Outcome = iota
	// OutcomeAlreadySent: ledger holds the triple; no network call was made,
	// or a concurrent sender won the record race.
	OutcomeAlreadySent
	// OutcomeDeferred: a recent delivery failure put the triple in cooldown.
	OutcomeDeferred
	// OutcomeFailed: gateway or ledger failure; eligible for retry.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeAlreadySent:
		return "already_sent"
	case OutcomeDeferred:
		return "deferred"
	default:
		return "failed"
	}
}

// Dispatcher sends at most one push per unique (team, title, message)
// triple, ever. It is shared by the polling loop and the admin send-now
// endpoint; all dedup decisions go through the ledger so concurrent callers
// cannot double-deliver.
type Dispatcher struct {
	store    ledger.Store
	sender   Sender
	topic    func(teamID int) string
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	lastAttempt map[string]time.Time
}

// NewDispatcher creates a dispatcher. topic maps a team number to its
// gateway topic; cooldown is the minimum wait before retrying a triple whose
// delivery failed (zero = retry on every cycle).
func NewDispatcher(store ledger.Store, sender Sender, topic func(teamID int) string, cooldown time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:       store,
		sender:      sender,
		topic:       topic,
		cooldown:    cooldown,
		logger:      logger,
		now:         time.Now,
		lastAttempt: make(map[string]time.Time),
	}
}

// Send delivers one alert. The ledger is consulted before any network call
// and written only after the gateway confirms delivery, so a failed push
// stays retryable and a confirmed push can never repeat.
// The returned error is non-nil only for OutcomeFailed.
func (d *Dispatcher) Send(ctx context.Context, teamID int, title, message string, priority int, clickURL string) (Outcome, error) {
	seen, err := d.store.Seen(ctx, teamID, title, message)
	if err != nil {
		// Without a dedup answer, sending risks a duplicate. Skip the cycle.
		return OutcomeFailed, err
	}
	if seen {
		return OutcomeAlreadySent, nil
	}

	now := d.now()
	if d.inCooldown(teamID, title, message, now) {
		return OutcomeDeferred, nil
	}

	if err := d.sender.Push(ctx, d.topic(teamID), title, message, priority, clickURL); err != nil {
		d.markAttempt(teamID, title, message, now)
		return OutcomeFailed, err
	}

	recorded, err := d.store.Record(ctx, teamID, title, message, now)
	if err != nil {
		// Delivered but not persisted; the next cycle may re-send. Surface
		// loudly — this is the one path that can break at-most-once.
		d.logger.Error("ledger record failed after delivery",
			"team", teamID, "title", title, "error", err)
		return OutcomeSent, nil
	}
	if !recorded {
		// A concurrent sender recorded the triple first.
		return OutcomeAlreadySent, nil
	}

	d.clearAttempt(teamID, title, message)
	return OutcomeSent, nil
}

func (d *Dispatcher) inCooldown(teamID int, title, message string, now time.Time) bool {
	if d.cooldown <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lastAttempt[attemptKey(teamID, title, message)]
	return ok && now.Sub(last) < d.cooldown
}

func (d *Dispatcher) markAttempt(teamID int, title, message string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Entries past the cooldown no longer defer anything; drop them so
	// triples that never deliver don't pile up for the process lifetime.
	for k, last := range d.lastAttempt {
		if at.Sub(last) >= d.cooldown {
			delete(d.lastAttempt, k)
		}
	}
	d.lastAttempt[attemptKey(teamID, title, message)] = at
}

func (d *Dispatcher) clearAttempt(teamID int, title, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.lastAttempt, attemptKey(teamID, title, message))
}

func attemptKey(teamID int, title, message string) string {
	return fmt.Sprintf("%d\x00%s\x00%s", teamID, title, message)
}

package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ftcvanguard/vanguard-alerts/internal/ftcapi"
	"github.com/ftcvanguard/vanguard-alerts/internal/push"
	"github.com/ftcvanguard/vanguard-alerts/internal/queue"
)

// EventResolver finds a team's live event and the season label to query.
type EventResolver interface {
	ResolveActiveEvent(ctx context.Context, teamID int, now time.Time) (string, bool, error)
	Season(now time.Time) int
}

// ScheduleFetcher reads an event's qualification schedule.
type ScheduleFetcher interface {
	FetchQualSchedule(ctx context.Context, eventCode string, season int) ([]ftcapi.ScheduledMatch, error)
}

// AlertSender is the dedup-guarded dispatch operation.
type AlertSender interface {
	Send(ctx context.Context, teamID int, title, message string, priority int, clickURL string) (push.Outcome, error)
}

// Supervisor drives the polling loop over the subscribed roster.
type Supervisor struct {
	resolver   EventResolver
	schedules  ScheduleFetcher
	dispatcher AlertSender
	teams      []int
	interval   time.Duration
	clickURL   string
	logger     *slog.Logger
	now        func() time.Time

	statusMu sync.RWMutex
	status   Status
}

// New constructs a Supervisor with sane defaults.
func New(resolver EventResolver, schedules ScheduleFetcher, dispatcher AlertSender, teams []int, interval time.Duration, clickURL string, logger *slog.Logger) *Supervisor {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		resolver:   resolver,
		schedules:  schedules,
		dispatcher: dispatcher,
		teams:      teams,
		interval:   interval,
		clickURL:   clickURL,
		logger:     logger,
		now:        time.Now,
		status: Status{
			State:       StateIdle,
			RosterSize:  len(teams),
			IntervalSec: interval.Seconds(),
		},
	}
}

// Run polls until ctx is cancelled. Blocks; intended to be called with `go`.
// No tick failure terminates the loop.
func (s *Supervisor) Run(ctx context.Context) {
	s.logger.Info("Match watch started", "teams", len(s.teams), "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial sweep so a fresh deploy alerts without waiting a full tick.
	s.tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.logger.Info("Match watch stopped")
			return
		}
	}
}

// tick runs one sweep with a panic guard so a malformed payload can never
// kill the daemon.
func (s *Supervisor) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep panicked", "panic", r)
			s.recordTick(SweepResult{Failures: 1, Errors: []string{fmt.Sprintf("panic: %v", r)}})
		}
	}()

	s.setState(StateRunning)
	result := s.Sweep(ctx)
	s.recordTick(result)

	if result.AlertsSent > 0 || result.Failures > 0 {
		s.logger.Info("Sweep complete", "summary", result.Summary())
	} else {
		s.logger.Debug("Sweep complete", "summary", result.Summary())
	}
}

// Sweep processes every subscribed team once, strictly sequentially. A
// failure on one team is recorded and does not stop the rest of the roster.
func (s *Supervisor) Sweep(ctx context.Context) SweepResult {
	start := s.now()
	var result SweepResult

	for _, teamID := range s.teams {
		result.TeamsChecked++
		if err := s.sweepTeam(ctx, teamID, &result); err != nil {
			result.Failures++
			result.Errors = append(result.Errors, fmt.Sprintf("team %d: %s", teamID, err))
			s.logger.Warn("Team sweep failed", "team", teamID, "error", err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	result.Duration = s.now().Sub(start)
	return result
}

// sweepTeam handles one team for one cycle: live event → schedule → queue
// estimate → windowed alerts.
func (s *Supervisor) sweepTeam(ctx context.Context, teamID int, result *SweepResult) error {
	now := s.now()

	code, active, err := s.resolver.ResolveActiveEvent(ctx, teamID, now)
	if err != nil {
		return fmt.Errorf("resolve event: %w", err)
	}
	if !active {
		return nil
	}
	result.ActiveEvents++

	schedule, err := s.schedules.FetchQualSchedule(ctx, code, s.resolver.Season(now))
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}
	if len(schedule) == 0 {
		return nil
	}

	// One-time heads-up the moment the qual schedule shows up.
	s.dispatch(ctx, result, teamID, TitleScheduleAvailable,
		fmt.Sprintf("The qualification schedule for %s is posted.", code),
		push.PriorityHigh, s.clickURL)

	est := queue.NextQueueTime(schedule, teamID, now)
	if est == nil {
		return nil
	}

	switch ClassifyWindow(est.QueueAt.Sub(now)) {
	case WindowUpcoming:
		s.dispatch(ctx, result, teamID, TitleUpcomingMatch,
			fmt.Sprintf("%s on %s queues in about 5 minutes.", est.Description(), est.Match.Field),
			push.PriorityDefault, s.clickURL)
	case WindowQueueing:
		s.dispatch(ctx, result, teamID, TitleMatchQueueing,
			fmt.Sprintf("Report to the queuing area for %s on %s now.", est.Description(), est.Match.Field),
			push.PriorityHigh, s.clickURL)
	}
	return nil
}

// dispatch sends one alert and folds the outcome into the sweep counters.
// Delivery failures are counted, not returned: a dead gateway for one alert
// must not mask the team's remaining alerts or abort the sweep.
func (s *Supervisor) dispatch(ctx context.Context, result *SweepResult, teamID int, title, message string, priority int, clickURL string) {
	outcome, err := s.dispatcher.Send(ctx, teamID, title, message, priority, clickURL)
	switch outcome {
	case push.OutcomeSent:
		result.AlertsSent++
		s.logger.Info("Alert sent", "team", teamID, "title", title)
	case push.OutcomeAlreadySent:
		result.AlreadySent++
	case push.OutcomeDeferred:
		result.Deferred++
	case push.OutcomeFailed:
		result.Failures++
		result.Errors = append(result.Errors, fmt.Sprintf("team %d: %s: %s", teamID, title, err))
		s.logger.Warn("Alert delivery failed", "team", teamID, "title", title, "error", err)
	}
}

// Status returns a snapshot of the supervisor's recent health.
func (s *Supervisor) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Supervisor) setState(state State) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.State = state
}

func (s *Supervisor) recordTick(result SweepResult) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.State = StateIdle
	s.status.LastTick = s.now()
	s.status.TicksDone++
	s.status.LastSweep = result
	if len(result.Errors) > 0 {
		s.status.LastError = result.Errors[len(result.Errors)-1]
	} else {
		s.status.LastError = ""
	}
}

// Package watch runs the match-notification loop: once per cadence tick it
// sweeps the subscribed roster, finds each team's live event, predicts the
// next queue call, and pushes alerts through the dispatcher.
//
// Sweep failures never escape the loop; a broken team or a broken tick is
// logged and the next tick proceeds.
package watch

import (
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const defaultInterval = 30 * time.Second

// Alert windows, measured as time remaining until the predicted queue call.
const (
	upcomingWindowFar  = 360 * time.Second // open: exactly 6 minutes out is silent
	upcomingWindowNear = 240 * time.Second // open lower edge
	queueingWindow     = 60 * time.Second  // closed, symmetric around zero
)

// Alert titles. Part of the dedup key, so changing one re-alerts everything.
const (
	TitleScheduleAvailable = "Schedule Available"
	TitleUpcomingMatch     = "Upcoming Match"
	TitleMatchQueueing     = "Match Queueing"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Window classifies how soon a queue call is.
type Window int

const (
	// WindowNone: no alert this cycle.
	WindowNone Window = iota
	// WindowUpcoming: queue call strictly inside (240s, 360s) — the
	// ~5 minute warning.
	WindowUpcoming
	// WindowQueueing: queue call within ±60s inclusive — report now.
	WindowQueueing
)

// ClassifyWindow maps time-until-queue-call to an alert window. The queueing
// window is closed at both edges (exactly ±60s still alerts); the upcoming
// window is open (exactly 360s out stays silent for one more cycle).
func ClassifyWindow(until time.Duration) Window {
	switch {
	case until > upcomingWindowNear && until < upcomingWindowFar:
		return WindowUpcoming
	case until >= -queueingWindow && until <= queueingWindow:
		return WindowQueueing
	default:
		return WindowNone
	}
}

// SweepResult tracks the outcome of one full roster sweep.
type SweepResult struct {
	TeamsChecked int           `json:"teams_checked"`
	ActiveEvents int           `json:"active_events"`
	AlertsSent   int           `json:"alerts_sent"`
	AlreadySent  int           `json:"already_sent"`
	Deferred     int           `json:"deferred"`
	Failures     int           `json:"failures"`
	Duration     time.Duration `json:"duration"`
	Errors       []string      `json:"errors,omitempty"`
}

// Summary returns a human-readable summary.
func (r *SweepResult) Summary() string {
	return fmt.Sprintf("teams=%d active=%d sent=%d dedup=%d deferred=%d failed=%d dur=%s",
		r.TeamsChecked, r.ActiveEvents, r.AlertsSent, r.AlreadySent,
		r.Deferred, r.Failures, r.Duration.Round(time.Millisecond))
}

// State is the supervisor's loop state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Status is a snapshot of the supervisor's recent health.
type Status struct {
	State       State       `json:"state"`
	LastTick    time.Time   `json:"last_tick"`
	LastError   string      `json:"last_error,omitempty"`
	TicksDone   int         `json:"ticks_done"`
	LastSweep   SweepResult `json:"last_sweep"`
	RosterSize  int         `json:"roster_size"`
	IntervalSec float64     `json:"interval_seconds"`
}

// Package queue predicts when a team must report to the queuing area for
// its next qualification match.
//
// Queueing convention: the first match on a field queues ten minutes before
// its scheduled start; every later match queues the moment the previous
// match on the same field begins.
package queue

import (
	"fmt"
	"time"

	"github.com/ftcvanguard/vanguard-alerts/internal/ftcapi"
)

// firstMatchLead is how far before its start the first match on a field is
// called to the queue.
const firstMatchLead = 10 * time.Minute

// Estimate is the predicted queue call for a team's next match.
type Estimate struct {
	Match   ftcapi.ScheduledMatch
	QueueAt time.Time
}

// Description returns the match description, falling back to the match
// number when the upstream left it blank.
func (e Estimate) Description() string {
	if e.Match.Description != "" {
		return e.Match.Description
	}
	return fmt.Sprintf("Match %d", e.Match.MatchNumber)
}

// NextQueueTime returns the earliest future queue call for teamID in the
// schedule, or nil when the team has no remaining match. Matches without a
// scheduled start time are skipped as malformed.
//
// One forward pass: lastAssigned tracks the most recent match per field that
// carries team assignments, so each candidate's predecessor is an O(1)
// lookup instead of a backward scan.
func NextQueueTime(schedule []ftcapi.ScheduledMatch, teamID int, now time.Time) *Estimate {
	var best *Estimate
	lastAssigned := make(map[string]ftcapi.ScheduledMatch)

	for _, m := range schedule {
		if m.StartTime.IsZero() {
			continue
		}

		if m.HasTeam(teamID) {
			queueAt := m.StartTime.Add(-firstMatchLead)
			if prev, ok := lastAssigned[m.Field]; ok {
				queueAt = prev.StartTime
			}
			if queueAt.After(now) && (best == nil || queueAt.Before(best.QueueAt)) {
				best = &Estimate{Match: m, QueueAt: queueAt}
			}
		}

		if len(m.Teams) > 0 {
			lastAssigned[m.Field] = m
		}
	}
	return best
}

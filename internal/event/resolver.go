// Package event determines which competition a team is currently attending.
package event

import (
	"context"
	"time"

	"github.com/ftcvanguard/vanguard-alerts/internal/ftcapi"
)

// eventDuration is how long an event is considered active after its listed
// start date. Covers load-in through the longest multi-day tournaments.
const eventDuration = 4 * 24 * time.Hour

// seasonLabelOffset accounts for the upstream naming a season after its
// later calendar year: shifting the clock back half a season lands in the
// labeled year for the whole competition window. Heuristic — pin SEASON in
// configuration instead of relying on this.
const seasonLabelOffset = 26 * 7 * 24 * time.Hour

// EventsFetcher is the upstream read the resolver needs.
type EventsFetcher interface {
	FetchEvents(ctx context.Context, teamID, season int) ([]ftcapi.EventSummary, error)
}

// Resolver finds the event a team is attending right now.
type Resolver struct {
	client EventsFetcher
	season int // zero = derive from the clock
}

// NewResolver creates a resolver. season may be zero to derive the label
// from the current time.
func NewResolver(client EventsFetcher, season int) *Resolver {
	return &Resolver{client: client, season: season}
}

// Season returns the season label used for upstream calls at time now.
func (r *Resolver) Season(now time.Time) int {
	return SeasonFor(now, r.season)
}

// SeasonFor returns override when set, otherwise the season label derived
// from now.
func SeasonFor(now time.Time, override int) int {
	if override != 0 {
		return override
	}
	return now.Add(-seasonLabelOffset).Year()
}

// ResolveActiveEvent returns the code of the first event whose active window
// [dateStart, dateStart+4d] contains now, or ok=false when the team has no
// live event. The caller skips the team for the cycle in that case.
func (r *Resolver) ResolveActiveEvent(ctx context.Context, teamID int, now time.Time) (string, bool, error) {
	events, err := r.client.FetchEvents(ctx, teamID, r.Season(now))
	if err != nil {
		return "", false, err
	}

	for _, e := range events {
		if e.Code == "" || e.DateStart.IsZero() {
			continue
		}
		end := e.DateStart.Add(eventDuration)
		if !now.Before(e.DateStart) && !now.After(end) {
			return e.Code, true, nil
		}
	}
	return "", false, nil
}

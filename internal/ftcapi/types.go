package ftcapi

import (
	"errors"
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Wire types
// --------------------------------------------------------------------------

// EventSummary is one event from GET /{season}/events.
type EventSummary struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	DateStart time.Time `json:"dateStart"`
}

// StationAssignment is one alliance station slot on a scheduled match.
type StationAssignment struct {
	TeamNumber int    `json:"teamNumber"`
	Station    string `json:"station"`
}

// ScheduledMatch is one qualification match from GET /{season}/schedule/{event}.
type ScheduledMatch struct {
	MatchNumber int                 `json:"matchNumber"`
	Field       string              `json:"field"`
	Description string              `json:"description"`
	StartTime   time.Time           `json:"startTime"`
	Teams       []StationAssignment `json:"teams"`
}

// HasTeam reports whether a team is assigned to any station of the match.
func (m ScheduledMatch) HasTeam(teamID int) bool {
	for _, t := range m.Teams {
		if t.TeamNumber == teamID {
			return true
		}
	}
	return false
}

type eventsResponse struct {
	Events []EventSummary `json:"events"`
}

type scheduleResponse struct {
	Schedule []ScheduledMatch `json:"schedule"`
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// UpstreamError reports a non-success response or transport failure from the
// FTC API. Callers skip the affected team for the current cycle.
type UpstreamError struct {
	Path   string
	Status int // zero on transport failure
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("FTC API %s returned %d", e.Path, e.Status)
	}
	return fmt.Sprintf("FTC API %s unreachable: %v", e.Path, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is an upstream availability failure.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

package queue

import (
	"fmt"
	"testing"
	"time"

	"github.com/ftcvanguard/vanguard-alerts/internal/ftcapi"
)

const subject = 9971

var base = time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)

func match(num int, field string, start time.Time, teams ...int) ftcapi.ScheduledMatch {
	m := ftcapi.ScheduledMatch{
		MatchNumber: num,
		Field:       field,
		Description: fmt.Sprintf("Qualification %d", num),
		StartTime:   start,
	}
	for i, t := range teams {
		station := "Red1"
		if i%2 == 1 {
			station = "Blue1"
		}
		m.Teams = append(m.Teams, ftcapi.StationAssignment{TeamNumber: t, Station: station})
	}
	return m
}

func TestFirstMatchOnFieldQueuesTenMinutesEarly(t *testing.T) {
	start := base.Add(1 * time.Hour)
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", start, subject, 11115),
	}

	est := NextQueueTime(schedule, subject, base)
	if est == nil {
		t.Fatal("expected an estimate")
	}
	if want := start.Add(-10 * time.Minute); !est.QueueAt.Equal(want) {
		t.Errorf("QueueAt = %v, want %v", est.QueueAt, want)
	}
	if est.Match.MatchNumber != 1 {
		t.Errorf("Match = %d, want 1", est.Match.MatchNumber)
	}
}

func TestChainedMatchQueuesAtPreviousStart(t *testing.T) {
	t1 := base.Add(1 * time.Hour)
	t2 := base.Add(70 * time.Minute)
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", t1, 11115, 12345),
		match(2, "A", t2, subject, 11115),
	}

	est := NextQueueTime(schedule, subject, base)
	if est == nil {
		t.Fatal("expected an estimate")
	}
	if !est.QueueAt.Equal(t1) {
		t.Errorf("QueueAt = %v, want previous match start %v", est.QueueAt, t1)
	}
	if est.Match.MatchNumber != 2 {
		t.Errorf("Match = %d, want 2", est.Match.MatchNumber)
	}
}

func TestOtherFieldDoesNotChain(t *testing.T) {
	t1 := base.Add(1 * time.Hour)
	t2 := base.Add(70 * time.Minute)
	schedule := []ftcapi.ScheduledMatch{
		match(1, "B", t1, 11115, 12345), // different field
		match(2, "A", t2, subject, 11115),
	}

	est := NextQueueTime(schedule, subject, base)
	if est == nil {
		t.Fatal("expected an estimate")
	}
	if want := t2.Add(-10 * time.Minute); !est.QueueAt.Equal(want) {
		t.Errorf("QueueAt = %v, want first-match rule %v", est.QueueAt, want)
	}
}

func TestUnassignedPredecessorIsSkipped(t *testing.T) {
	t1 := base.Add(1 * time.Hour)
	t2 := base.Add(70 * time.Minute)
	t3 := base.Add(80 * time.Minute)
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", t1, 11115, 12345),
		match(2, "A", t2), // no assignments yet
		match(3, "A", t3, subject, 12345),
	}

	est := NextQueueTime(schedule, subject, base)
	if est == nil {
		t.Fatal("expected an estimate")
	}
	// Match 2 carries no teams, so match 1 is the most recent assigned
	// predecessor on field A.
	if !est.QueueAt.Equal(t1) {
		t.Errorf("QueueAt = %v, want %v", est.QueueAt, t1)
	}
}

func TestPassedQueueTimesAreDiscarded(t *testing.T) {
	early := base.Add(-2 * time.Hour)
	late := base.Add(3 * time.Hour)
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", early, subject, 11115),
		match(2, "B", late, subject, 12345),
	}

	est := NextQueueTime(schedule, subject, base)
	if est == nil {
		t.Fatal("expected an estimate")
	}
	if est.Match.MatchNumber != 2 {
		t.Errorf("Match = %d, want the future match 2", est.Match.MatchNumber)
	}
}

func TestExhaustedScheduleReturnsNil(t *testing.T) {
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", base.Add(-3*time.Hour), subject, 11115),
		match(2, "A", base.Add(-2*time.Hour), subject, 12345),
	}

	if est := NextQueueTime(schedule, subject, base); est != nil {
		t.Fatalf("expected nil, got %+v", est)
	}
}

func TestQueueTimeExactlyNowIsDiscarded(t *testing.T) {
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", base.Add(10*time.Minute), subject, 11115),
	}

	// Queue time is start-10min == base exactly; not in the future.
	if est := NextQueueTime(schedule, subject, base); est != nil {
		t.Fatalf("expected nil, got %+v", est)
	}
}

func TestEarliestCandidateWins(t *testing.T) {
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", base.Add(2*time.Hour), subject, 11115),
		match(2, "B", base.Add(1*time.Hour), subject, 12345),
	}

	est := NextQueueTime(schedule, subject, base)
	if est == nil {
		t.Fatal("expected an estimate")
	}
	if est.Match.MatchNumber != 2 {
		t.Errorf("Match = %d, want earliest queue call (match 2)", est.Match.MatchNumber)
	}
}

func TestTeamNotInScheduleReturnsNil(t *testing.T) {
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", base.Add(1*time.Hour), 11115, 12345),
	}

	if est := NextQueueTime(schedule, subject, base); est != nil {
		t.Fatalf("expected nil, got %+v", est)
	}
}

func TestMatchesWithoutStartTimeAreSkipped(t *testing.T) {
	good := base.Add(1 * time.Hour)
	schedule := []ftcapi.ScheduledMatch{
		match(1, "A", time.Time{}, subject, 11115), // malformed
		match(2, "A", good, subject, 12345),
	}

	est := NextQueueTime(schedule, subject, base)
	if est == nil {
		t.Fatal("expected an estimate")
	}
	if est.Match.MatchNumber != 2 {
		t.Errorf("Match = %d, want 2", est.Match.MatchNumber)
	}
	// The malformed match must not act as a field predecessor either.
	if want := good.Add(-10 * time.Minute); !est.QueueAt.Equal(want) {
		t.Errorf("QueueAt = %v, want %v", est.QueueAt, want)
	}
}

func TestDescriptionFallsBackToMatchNumber(t *testing.T) {
	m := ftcapi.ScheduledMatch{MatchNumber: 7}
	est := Estimate{Match: m}
	if got := est.Description(); got != "Match 7" {
		t.Errorf("Description() = %q, want %q", got, "Match 7")
	}
}

package watch

import (
	"testing"
	"time"
)

func TestClassifyWindow(t *testing.T) {
	tests := []struct {
		name  string
		until time.Duration
		want  Window
	}{
		{"six minutes exactly is silent", 360 * time.Second, WindowNone},
		{"just under six minutes is upcoming", 360*time.Second - 10*time.Millisecond, WindowUpcoming},
		{"five minutes is upcoming", 300 * time.Second, WindowUpcoming},
		{"just over four minutes is upcoming", 241 * time.Second, WindowUpcoming},
		{"four minutes exactly is silent", 240 * time.Second, WindowNone},
		{"two minutes is silent", 120 * time.Second, WindowNone},
		{"one minute out is queueing", 60 * time.Second, WindowQueueing},
		{"thirty seconds out is queueing", 30 * time.Second, WindowQueueing},
		{"queue call now is queueing", 0, WindowQueueing},
		{"one minute past is queueing", -60 * time.Second, WindowQueueing},
		{"just over a minute past is silent", -60*time.Second - 10*time.Millisecond, WindowNone},
		{"an hour out is silent", time.Hour, WindowNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyWindow(tt.until); got != tt.want {
				t.Errorf("ClassifyWindow(%v) = %v, want %v", tt.until, got, tt.want)
			}
		})
	}
}

func TestSweepResultSummary(t *testing.T) {
	r := SweepResult{TeamsChecked: 3, ActiveEvents: 1, AlertsSent: 2, Failures: 1, Duration: 1500 * time.Millisecond}
	want := "teams=3 active=1 sent=2 dedup=0 deferred=0 failed=1 dur=1.5s"
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

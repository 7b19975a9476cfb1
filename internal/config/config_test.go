package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.FTCBaseURL != DefaultFTCBaseURL {
		t.Errorf("FTCBaseURL = %q", cfg.FTCBaseURL)
	}
	if cfg.NtfyBaseURL != DefaultNtfyBaseURL {
		t.Errorf("NtfyBaseURL = %q", cfg.NtfyBaseURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.RetryCooldown != 120*time.Second {
		t.Errorf("RetryCooldown = %v, want 2m", cfg.RetryCooldown)
	}
	if cfg.Season != 0 {
		t.Errorf("Season = %d, want 0 (derive)", cfg.Season)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TEAM_SUBSCRIPTIONS", "9971, 14875 ,7244")
	t.Setenv("POLL_INTERVAL_SECONDS", "10")
	t.Setenv("SEASON", "2024")
	t.Setenv("NTFY_BASE_URL", "https://push.example.org/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Teams) != 3 || cfg.Teams[0] != 9971 || cfg.Teams[2] != 7244 {
		t.Errorf("Teams = %v", cfg.Teams)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.Season != 2024 {
		t.Errorf("Season = %d", cfg.Season)
	}
	// Trailing slash is stripped so topic URLs join cleanly.
	if cfg.NtfyBaseURL != "https://push.example.org" {
		t.Errorf("NtfyBaseURL = %q", cfg.NtfyBaseURL)
	}
}

func TestLoadRejectsBadTeamList(t *testing.T) {
	t.Setenv("TEAM_SUBSCRIPTIONS", "9971,unknown")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric team")
	}
}

func TestTopicFormat(t *testing.T) {
	cfg := &Config{NtfyTopicFormat: "vanguard-team-%d"}
	if got := cfg.Topic(9971); got != "vanguard-team-9971" {
		t.Errorf("Topic = %q", got)
	}
}

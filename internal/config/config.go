// Package config provides centralized configuration loaded from environment
// variables. Shared by the serve daemon and the one-shot sweep command.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultFTCBaseURL    = "https://ftc-api.firstinspires.org/v2.0"
	DefaultNtfyBaseURL   = "https://ntfy.sh"
	DefaultTopicTemplate = "vanguard-team-%d"
	DefaultScheduleURL   = "https://ftcvanguard.org/app#/schedule"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Upstream FTC Events API
	FTCBaseURL  string
	FTCUsername string
	FTCToken    string
	UpstreamRPM int

	// Season label used in upstream URLs. Zero means "derive from the clock"
	// (see event.SeasonFor) — pin this once the season is known.
	Season int

	// Push gateway
	NtfyBaseURL      string
	NtfyTopicFormat  string
	ScheduleClickURL string

	// Roster of subscribed team numbers
	Teams []int

	// Polling
	PollInterval  time.Duration
	RetryCooldown time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// DATABASE_URL is not required here; serve checks for it, sweep can run with
// the in-memory ledger when it is absent.
func Load() (*Config, error) {
	teams, err := envTeams("TEAM_SUBSCRIPTIONS")
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		FTCBaseURL:  envOr("FTC_API_BASE_URL", DefaultFTCBaseURL),
		FTCUsername: envOr("FTC_API_USERNAME", ""),
		FTCToken:    envOr("FTC_API_TOKEN", ""),
		UpstreamRPM: envInt("UPSTREAM_RPM", 30),

		Season: envInt("SEASON", 0),

		NtfyBaseURL:      strings.TrimRight(envOr("NTFY_BASE_URL", DefaultNtfyBaseURL), "/"),
		NtfyTopicFormat:  envOr("NTFY_TOPIC_TEMPLATE", DefaultTopicTemplate),
		ScheduleClickURL: envOr("SCHEDULE_CLICK_URL", DefaultScheduleURL),

		Teams: teams,

		PollInterval:  time.Duration(envInt("POLL_INTERVAL_SECONDS", 30)) * time.Second,
		RetryCooldown: time.Duration(envInt("RETRY_COOLDOWN_SECONDS", 120)) * time.Second,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8080)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:8080",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
	}, nil
}

// Topic returns the push gateway topic for a team.
func (c *Config) Topic(teamID int) string {
	return fmt.Sprintf(c.NtfyTopicFormat, teamID)
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

func envTeams(key string) ([]int, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	teams := make([]int, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a team number", key, trimmed)
		}
		teams = append(teams, n)
	}
	return teams, nil
}

// Package ftcapi provides the HTTP client for the FIRST Tech Challenge
// Events API.
//
// The API is season-scoped (season label in the path) and authenticated with
// HTTP basic credentials. Rate limiting is handled via a token bucket
// limiter. The client does not retry: the polling cadence is the retry
// policy.
package ftcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 15 * time.Second

// Client is the HTTP client for all FTC Events API endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	token      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an FTC API client with rate limiting.
func NewClient(baseURL, username, token string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		username:   username,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// FetchEvents returns all events a team attends in the given season.
// A season with no events is an empty slice, not an error.
func (c *Client) FetchEvents(ctx context.Context, teamID, season int) ([]EventSummary, error) {
	params := url.Values{}
	params.Set("teamNumber", fmt.Sprintf("%d", teamID))

	body, err := c.get(ctx, fmt.Sprintf("/%d/events", season), params)
	if err != nil {
		return nil, err
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode events response: %w", err)
	}
	return resp.Events, nil
}

// FetchQualSchedule returns the qualification match schedule for an event.
// An unposted schedule is an empty slice, not an error.
func (c *Client) FetchQualSchedule(ctx context.Context, eventCode string, season int) ([]ScheduledMatch, error) {
	params := url.Values{}
	params.Set("tournamentLevel", "qual")

	body, err := c.get(ctx, fmt.Sprintf("/%d/schedule/%s", season, url.PathEscape(eventCode)), params)
	if err != nil {
		return nil, err
	}

	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode schedule response: %w", err)
	}
	return resp.Schedule, nil
}

// get performs a rate-limited, basic-authenticated GET request.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Path: path, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("FTC API non-200", "path", path, "status", resp.StatusCode, "body", truncate(body, 200))
		return nil, &UpstreamError{Path: path, Status: resp.StatusCode}
	}

	return body, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

// Package push delivers alerts through an ntfy-compatible gateway and
// guards every send with the dedup ledger.
package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ntfy priority levels. Higher is more urgent.
const (
	PriorityDefault = 3
	PriorityHigh    = 4
)

const senderTimeout = 10 * time.Second

// Sender delivers one message to one topic.
type Sender interface {
	Push(ctx context.Context, topic, title, message string, priority int, clickURL string) error
}

// DeliveryError reports a failed push gateway call. The ledger is left
// untouched so a later cycle may retry.
type DeliveryError struct {
	Topic  string
	Status int // zero on transport failure
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("push to %s returned %d", e.Topic, e.Status)
	}
	return fmt.Sprintf("push to %s failed: %v", e.Topic, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// NtfySender posts messages to an ntfy-style gateway: one POST per message,
// metadata in headers, UTF-8 body.
type NtfySender struct {
	httpClient *http.Client
	baseURL    string
}

// NewNtfySender creates a sender for the gateway at baseURL.
func NewNtfySender(baseURL string) *NtfySender {
	return &NtfySender{
		httpClient: &http.Client{Timeout: senderTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Push sends one message. Success is HTTP 200; anything else is a
// *DeliveryError.
func (s *NtfySender) Push(ctx context.Context, topic, title, message string, priority int, clickURL string) error {
	u := s.baseURL + "/" + topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Title", title)
	req.Header.Set("Priority", strconv.Itoa(priority))
	if clickURL != "" {
		req.Header.Set("Click", clickURL)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Topic: topic, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &DeliveryError{Topic: topic, Status: resp.StatusCode}
	}
	return nil
}

package push

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNtfySenderPostsHeadersAndBody(t *testing.T) {
	var (
		gotPath, gotTitle, gotPriority, gotClick, gotBody string
		gotMethod                                         string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		gotClick = r.Header.Get("Click")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer srv.Close()

	s := NewNtfySender(srv.URL)
	err := s.Push(context.Background(), "vanguard-team-9971", "Match Queueing", "Report now.", PriorityHigh, "https://example.org/schedule")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/vanguard-team-9971" {
		t.Errorf("path = %q", gotPath)
	}
	if gotTitle != "Match Queueing" || gotPriority != "4" || gotClick != "https://example.org/schedule" {
		t.Errorf("headers = (%q, %q, %q)", gotTitle, gotPriority, gotClick)
	}
	if gotBody != "Report now." {
		t.Errorf("body = %q", gotBody)
	}
}

func TestNtfySenderOmitsEmptyClick(t *testing.T) {
	var clickSet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, clickSet = r.Header["Click"]
	}))
	defer srv.Close()

	s := NewNtfySender(srv.URL)
	if err := s.Push(context.Background(), "t", "Title", "msg", PriorityDefault, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clickSet {
		t.Error("Click header should be omitted when no URL is given")
	}
}

func TestNtfySenderNon200IsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewNtfySender(srv.URL)
	err := s.Push(context.Background(), "t", "Title", "msg", PriorityDefault, "")
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DeliveryError, got %v", err)
	}
	if de.Status != http.StatusForbidden || de.Topic != "t" {
		t.Errorf("unexpected error: %+v", de)
	}
}

func TestNtfySenderTransportFailureIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := NewNtfySender(srv.URL)
	err := s.Push(context.Background(), "t", "Title", "msg", PriorityDefault, "")
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DeliveryError, got %v", err)
	}
	if de.Status != 0 {
		t.Errorf("Status = %d, want 0 for transport failure", de.Status)
	}
}

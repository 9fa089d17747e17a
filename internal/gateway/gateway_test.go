package gateway

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/monitor"
	"migration-scorer/pkg/logger"
)

func TestStreamEmitsConnectedThenInitialThenLoaded(t *testing.T) {
	m := monitor.New(nil, nil, nil, logger.Default())
	g := New(m, logger.Default())

	req := httptest.NewRequest("GET", "/stream", nil)
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		g.Stream(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after context cancellation")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: connected") {
		t.Errorf("expected a connected event, got body: %s", body)
	}
	if !strings.Contains(body, "event: initial") {
		t.Errorf("expected an initial event, got body: %s", body)
	}
	if !strings.Contains(body, "event: loaded") {
		t.Errorf("expected a loaded event, got body: %s", body)
	}
	if ci, ii, li := strings.Index(body, "event: connected"), strings.Index(body, "event: initial"), strings.Index(body, "event: loaded"); !(ci < ii && ii < li) {
		t.Errorf("expected connected, initial, loaded in that order, got body: %s", body)
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Cache-Control") != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", rec.Header().Get("Cache-Control"))
	}
}

func TestStreamForwardsLiveTokens(t *testing.T) {
	m := monitor.New(nil, nil, nil, logger.Default())
	g := New(m, logger.Default())

	req := httptest.NewRequest("GET", "/stream", nil)
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		g.Stream(rec, req)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	m.TestInject(domain.TokenRecord{Address: "mint-live", Analysis: domain.AnalysisResult{Passed: true}})
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after context cancellation")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: token") || !strings.Contains(body, "mint-live") {
		t.Errorf("expected a forwarded token event for mint-live, got body: %s", body)
	}
}

func TestTokenForwarderEmitsPassedAndFilteredEvents(t *testing.T) {
	events := make(chan sseEvent, 4)
	f := tokenForwarder{events}

	f.OnToken(domain.TokenRecord{Address: "mint-pass", Analysis: domain.AnalysisResult{Passed: true}})
	f.OnToken(domain.TokenRecord{Address: "mint-fail", Analysis: domain.AnalysisResult{Passed: false}})

	first := <-events
	payload, ok := first.data.(tokenPayload)
	if !ok || payload.Type != "passed" || payload.Token.Address != "mint-pass" {
		t.Fatalf("expected passed token event for mint-pass, got %+v", first)
	}

	second := <-events
	payload, ok = second.data.(tokenPayload)
	if !ok || payload.Type != "filtered" || payload.Token.Address != "mint-fail" {
		t.Fatalf("expected filtered token event for mint-fail, got %+v", second)
	}
}

func TestTokenForwarderDropsOnFullBuffer(t *testing.T) {
	events := make(chan sseEvent, 1)
	f := tokenForwarder{events}

	f.OnToken(domain.TokenRecord{Address: "first"})
	f.OnToken(domain.TokenRecord{Address: "second"}) // buffer full, must drop without blocking

	if len(events) != 1 {
		t.Fatalf("expected buffer to stay at capacity 1, got %d", len(events))
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/gateway"
	"migration-scorer/internal/monitor"
	"migration-scorer/pkg/logger"
)

func newTestAPI() *API {
	m := monitor.New(nil, nil, nil, logger.Default())
	gw := gateway.New(m, logger.Default())
	return New(m, gw, logger.Default())
}

func TestStatsReturnsEnvelope(t *testing.T) {
	a := newTestAPI()
	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()

	a.Stats(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !body.Success {
		t.Fatalf("expected success=true, got %+v", body)
	}
}

func TestTokenByAddressNotFound(t *testing.T) {
	a := newTestAPI()
	req := httptest.NewRequest("GET", "/tokens/missing", nil)
	rec := httptest.NewRecorder()

	a.TokenByAddress(rec, req, "missing-mint")

	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Success {
		t.Fatalf("expected success=false for missing token, got %+v", body)
	}
}

func TestTokensFiltersByPassed(t *testing.T) {
	a := newTestAPI()

	passed := domain.TokenRecord{Address: "p1", Analysis: domain.AnalysisResult{Passed: true}}
	filtered := domain.TokenRecord{Address: "f1", Analysis: domain.AnalysisResult{Passed: false}}
	a.monitor.TestInject(passed)
	a.monitor.TestInject(filtered)

	req := httptest.NewRequest("GET", "/tokens?passed=true", nil)
	rec := httptest.NewRecorder()
	a.Tokens(rec, req)

	var body struct {
		Success bool
		Data    tokensResponse
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Data.Tokens) != 1 || body.Data.Tokens[0].Address != "p1" {
		t.Fatalf("expected exactly the passed token, got %+v", body.Data.Tokens)
	}
}

func TestAnalyzeRejectsMissingAddress(t *testing.T) {
	a := newTestAPI()
	req := httptest.NewRequest("POST", "/analyze", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	a.Analyze(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeRejectsMalformedBody(t *testing.T) {
	a := newTestAPI()
	req := httptest.NewRequest("POST", "/analyze", bytes.NewBufferString(`not json`))
	rec := httptest.NewRecorder()

	a.Analyze(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}


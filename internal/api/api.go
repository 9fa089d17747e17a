// Package api implements the JSON HTTP surface: token listing, single-record
// lookup, stats, manual analysis, and the mounted SSE stream.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/gateway"
	"migration-scorer/internal/monitor"
	"migration-scorer/pkg/logger"
)

const defaultTokensLimit = 50

// API holds the handlers for the JSON HTTP surface.
type API struct {
	monitor *monitor.Monitor
	gateway *gateway.Gateway
	log     *logger.Logger
}

// New builds an API over monitor and gateway.
func New(m *monitor.Monitor, gw *gateway.Gateway, log *logger.Logger) *API {
	return &API{monitor: m, gateway: gw, log: log.With("api")}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type tokensResponse struct {
	Tokens      []domain.TokenRecord `json:"tokens"`
	Stats       monitor.Stats        `json:"stats"`
	Count       int                  `json:"count"`
	IsConnected bool                 `json:"isConnected"`
}

// Tokens handles GET /tokens?passed=bool&limit=int. It starts the monitor
// on first call if it isn't already running.
func (a *API) Tokens(w http.ResponseWriter, r *http.Request) {
	a.monitor.EnsureStarted(r.Context())

	history := a.monitor.History()

	q := r.URL.Query()
	if raw := q.Get("passed"); raw != "" {
		want, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "passed must be a boolean")
			return
		}
		filtered := make([]domain.TokenRecord, 0, len(history))
		for _, t := range history {
			if t.Analysis.Passed == want {
				filtered = append(filtered, t)
			}
		}
		history = filtered
	}

	limit := defaultTokensLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	writeData(w, http.StatusOK, tokensResponse{
		Tokens:      history,
		Stats:       a.monitor.Stats(),
		Count:       len(history),
		IsConnected: a.monitor.IsConnected(),
	})
}

// TokenByAddress handles GET /tokens/{address}.
func (a *API) TokenByAddress(w http.ResponseWriter, r *http.Request, address string) {
	if address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	for _, t := range a.monitor.History() {
		if t.Address == address {
			writeData(w, http.StatusOK, t)
			return
		}
	}
	writeError(w, http.StatusNotFound, "token not found")
}

type statsResponse struct {
	Monitored int `json:"monitored"`
	Passed    int `json:"passed"`
	Filtered  int `json:"filtered"`
}

// Stats handles GET /stats.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	s := a.monitor.Stats()
	writeData(w, http.StatusOK, statsResponse{Monitored: s.Monitored, Passed: s.Passed, Filtered: s.Filtered})
}

type analyzeRequest struct {
	TokenAddress string `json:"tokenAddress"`
	Creator      string `json:"creator,omitempty"`
}

// Analyze handles POST /analyze. A panic surfacing from the enrichment path
// (the Orchestrator itself never returns an error; every provider failure is
// sentinel-valued) is the only failure mode and is reported as a 500.
func (a *API) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.TokenAddress == "" {
		writeError(w, http.StatusBadRequest, "tokenAddress is required")
		return
	}

	event := domain.MigrationEvent{
		Mint:      req.TokenAddress,
		Signature: "manual",
		Creator:   req.Creator,
	}

	record, err := a.safeAnalyze(r.Context(), event)
	if err != nil {
		a.log.Error("analyze failed", logger.String("mint", req.TokenAddress), logger.Err(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, record)
}

func (a *API) safeAnalyze(ctx context.Context, event domain.MigrationEvent) (record domain.TokenRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	record = a.monitor.Analyze(ctx, event)
	return record, nil
}

// Stream delegates to the Subscriber Gateway.
func (a *API) Stream(w http.ResponseWriter, r *http.Request) {
	a.gateway.Stream(w, r)
}

// Health is a liveness probe, independent of monitor/upstream state.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Package gateway implements the Subscriber Gateway: a long-lived SSE
// response stream per subscriber, backed by the Token Monitor's history and
// live token feed.
package gateway

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/monitor"
	"migration-scorer/internal/observability"
	"migration-scorer/pkg/logger"
)

const (
	heartbeatInterval     = 30 * time.Second
	initialSnapshotLimit  = 30
	subscriberBufferSize  = 64
)

// Gateway serves the /stream SSE endpoint against a shared Monitor.
type Gateway struct {
	monitor *monitor.Monitor
	log     *logger.Logger

	subscriberCount int64
}

// New builds a Gateway over monitor.
func New(m *monitor.Monitor, log *logger.Logger) *Gateway {
	return &Gateway{monitor: m, log: log.With("gateway")}
}

type sseEvent struct {
	name string
	data any
}

type connectedPayload struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

type loadingPayload struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type loadedPayload struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type initialPayload struct {
	Tokens []domain.TokenRecord `json:"tokens"`
	Stats  monitor.Stats        `json:"stats"`
}

type tokenPayload struct {
	Token domain.TokenRecord `json:"token"`
	Type  string             `json:"type"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type heartbeatPayload struct {
	Timestamp int64         `json:"timestamp"`
	Stats     monitor.Stats `json:"stats"`
}

// Stream implements the handshake sequence from the Subscriber Gateway spec:
// connected, then loading (only while backfill is still running), then
// initial followed by loaded, then a live forwarding loop with periodic
// heartbeats, until the client disconnects.
func (g *Gateway) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()

	g.writeEvent(w, flusher, "connected", connectedPayload{Status: "connected", Timestamp: time.Now().UnixMilli()})

	g.monitor.EnsureStarted(ctx)

	if g.monitor.InitialLoadComplete() {
		g.sendInitial(w, flusher)
		g.writeEvent(w, flusher, "loaded", loadedPayload{Status: "history_loaded", Count: len(g.monitor.History())})
	} else {
		g.writeEvent(w, flusher, "loading", loadingPayload{Status: "loading_history", Count: len(g.monitor.History())})
		select {
		case <-g.monitor.WaitInitialLoad():
		case <-ctx.Done():
			return
		}
		g.sendInitial(w, flusher)
		g.writeEvent(w, flusher, "loaded", loadedPayload{Status: "history_loaded", Count: len(g.monitor.History())})
	}

	events := make(chan sseEvent, subscriberBufferSize)

	unsubToken := g.monitor.Subscribe(tokenForwarder{events})
	unsubStatus := g.monitor.SubscribeStatus(func(connected bool) {
		status := "disconnected"
		if connected {
			status = "connected"
		}
		nonBlockingSend(events, sseEvent{name: "status", data: statusPayload{Status: status}})
	})

	atomic.AddInt64(&g.subscriberCount, 1)
	observability.UpdateSSESubscribers(int(atomic.LoadInt64(&g.subscriberCount)))
	defer func() {
		unsubToken()
		unsubStatus()
		atomic.AddInt64(&g.subscriberCount, -1)
		observability.UpdateSSESubscribers(int(atomic.LoadInt64(&g.subscriberCount)))
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !g.writeEvent(w, flusher, ev.name, ev.data) {
				return
			}
		case <-heartbeat.C:
			if !g.writeEvent(w, flusher, "heartbeat", heartbeatPayload{Timestamp: time.Now().UnixMilli(), Stats: g.monitor.Stats()}) {
				return
			}
		}
	}
}

func (g *Gateway) sendInitial(w http.ResponseWriter, f http.Flusher) {
	history := g.monitor.History()
	if len(history) > initialSnapshotLimit {
		history = history[len(history)-initialSnapshotLimit:]
	}
	g.writeEvent(w, f, "initial", initialPayload{Tokens: history, Stats: g.monitor.Stats()})
}

// writeEvent serializes and writes one SSE frame. It returns false if the
// write failed, signaling the caller to tear down the stream.
func (g *Gateway) writeEvent(w http.ResponseWriter, f http.Flusher, name string, payload any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		g.log.Error("failed to marshal sse payload", logger.String("event", name), logger.Err(err))
		return true
	}
	if _, err := w.Write([]byte("event: " + name + "\ndata: " + string(body) + "\n\n")); err != nil {
		g.log.Warn("sse write failed, closing subscriber", logger.String("event", name), logger.Err(err))
		return false
	}
	f.Flush()
	observability.RecordSSEEvent(name)
	return true
}

// tokenForwarder adapts monitor.Listener to a bounded, drop-on-overflow
// per-subscriber event channel.
type tokenForwarder struct {
	events chan<- sseEvent
}

func (t tokenForwarder) OnToken(r domain.TokenRecord) {
	eventType := "filtered"
	if r.Analysis.Passed {
		eventType = "passed"
	}
	nonBlockingSend(t.events, sseEvent{name: "token", data: tokenPayload{Token: r, Type: eventType}})
}

func nonBlockingSend(ch chan<- sseEvent, ev sseEvent) {
	select {
	case ch <- ev:
	default:
	}
}

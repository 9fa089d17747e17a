// Package migration owns the single persistent upstream WebSocket
// subscription that produces MigrationEvents, and the local publish/
// subscribe bus that fans them out to the rest of the pipeline.
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/observability"
	"migration-scorer/internal/priceoracle"
	"migration-scorer/pkg/logger"
)

// State is the connection lifecycle of the Migration Source.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
)

const (
	baseReconnectDelay = 5 * time.Second
	maxReconnectDelay  = 25 * time.Second
	maxAttempts        = 10
	cooldownPeriod     = 60 * time.Second
	livenessInterval   = 30 * time.Second
	writeTimeout       = 10 * time.Second
)

// Listener receives migration events and connect/disconnect notifications.
// A Listener's own error MUST NOT propagate back into the connection loop;
// Source recovers from panics in listener callbacks.
type Listener interface {
	OnMigration(domain.MigrationEvent)
	OnConnected()
	OnDisconnected()
}

// Source is the single-instance owner of the upstream WebSocket connection.
// Construct one per process and pass it explicitly to dependents rather
// than reaching for a global; tests construct fresh instances.
type Source struct {
	url         string
	priceOracle *priceoracle.Oracle
	log         *logger.Logger

	state atomic.Int32

	mu        sync.RWMutex
	listeners []Listener

	stopOnce sync.Once
	done     chan struct{}
}

// New constructs a Migration Source against wsURL.
func New(wsURL string, priceOracle *priceoracle.Oracle, log *logger.Logger) *Source {
	if log == nil {
		log = logger.Default()
	}
	return &Source{
		url:         wsURL,
		priceOracle: priceOracle,
		log:         log.With("migration_source"),
		done:        make(chan struct{}),
	}
}

// Subscribe registers a listener and returns an unsubscribe function.
func (s *Source) Subscribe(l Listener) func() {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.listeners {
			if existing == l {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// State returns the current connection state.
func (s *Source) State() State {
	return State(s.state.Load())
}

// Start runs the persistent connect/reconnect loop until ctx is canceled or
// Stop is called. It returns once the loop has exited.
func (s *Source) Start(ctx context.Context) {
	attempts := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}

		s.setState(StateConnecting)
		conn, err := s.dial(ctx)
		if err != nil {
			s.log.Warn("migration source dial failed", logger.Err(err))
			attempts++
			if attempts >= maxAttempts {
				s.log.Warn("max reconnect attempts reached, entering cooldown", logger.Int("attempts", attempts))
				if !s.sleep(ctx, cooldownPeriod) {
					return
				}
				attempts = 0
				continue
			}
			delay := backoffDelay(attempts)
			if !s.sleep(ctx, delay) {
				return
			}
			continue
		}

		attempts = 0
		s.setState(StateOpen)
		observability.RecordWSReconnect()
		s.notifyConnected()

		s.runConnection(ctx, conn)

		s.setState(StateDisconnected)
		s.notifyDisconnected()

		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}

		attempts++
		if attempts >= maxAttempts {
			s.log.Warn("max reconnect attempts reached, entering cooldown", logger.Int("attempts", attempts))
			if !s.sleep(ctx, cooldownPeriod) {
				return
			}
			attempts = 0
			continue
		}
		if !s.sleep(ctx, backoffDelay(attempts)) {
			return
		}
	}
}

// Stop terminates the connect loop promptly.
func (s *Source) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func backoffDelay(attempts int) time.Duration {
	mult := attempts
	if mult > 5 {
		mult = 5
	}
	delay := baseReconnectDelay * time.Duration(mult)
	if delay > maxReconnectDelay {
		delay = maxReconnectDelay
	}
	return delay
}

func (s *Source) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	}
}

func (s *Source) setState(st State) {
	s.state.Store(int32(st))
	observability.UpdateWSState(int(st))
}

func (s *Source) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("migration source dial: %w", err)
	}
	return conn, nil
}

// subscribeFrame is sent once the connection is open.
type subscribeFrame struct {
	Method string `json:"method"`
}

func (s *Source) runConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(subscribeFrame{Method: "subscribeMigration"}); err != nil {
		s.log.Warn("migration source subscribe write failed", logger.Err(err))
		return
	}

	connDone := make(chan struct{})
	go s.pingLoop(conn, connDone)
	defer close(connDone)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.log.Warn("migration source read error", logger.Err(err))
			}
			return
		}
		s.handleFrame(message)

		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}
	}
}

func (s *Source) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}

// frame is the upstream wire schema for migration/buy/sell notifications.
type frame struct {
	TxType          string  `json:"txType"`
	Signature       string  `json:"signature"`
	Mint            string  `json:"mint"`
	Name            string  `json:"name,omitempty"`
	Symbol          string  `json:"symbol,omitempty"`
	URI             string  `json:"uri,omitempty"`
	Pool            string  `json:"pool,omitempty"`
	MarketCapSol    *float64 `json:"marketCapSol,omitempty"`
	Creator         string  `json:"creator,omitempty"`
	TraderPublicKey string  `json:"traderPublicKey,omitempty"`
	TokenAmount     float64 `json:"tokenAmount,omitempty"`
	SolAmount       float64 `json:"solAmount,omitempty"`
}

func (s *Source) handleFrame(message []byte) {
	var f frame
	if err := json.Unmarshal(message, &f); err != nil {
		s.log.Warn("malformed migration frame", logger.Err(err))
		return
	}

	if f.TxType != "migration" {
		// buy/sell frames are only meaningful to a live trade tape, which is
		// out of scope for this pipeline's event intake.
		return
	}
	if f.Mint == "" {
		return
	}

	event := domain.MigrationEvent{
		Mint:      f.Mint,
		Signature: f.Signature,
		Name:      f.Name,
		Symbol:    f.Symbol,
		URI:       f.URI,
		Pool:      f.Pool,
		Timestamp: time.Now().UnixMilli(),
		Creator:   f.Creator,
	}

	if f.MarketCapSol != nil {
		if usd, ok := s.priceOracle.SolToUsd(context.Background(), *f.MarketCapSol); ok {
			event.MarketCap = usd
			event.HasMarketCap = true
		}
		// if the oracle is unavailable, MarketCap is left unset, not zero.
	}

	observability.RecordMigrationReceived()
	s.notifyMigration(event)
}

func (s *Source) notifyMigration(event domain.MigrationEvent) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		s.safeCall(func() { l.OnMigration(event) })
	}
}

func (s *Source) notifyConnected() {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		s.safeCall(l.OnConnected)
	}
}

func (s *Source) notifyDisconnected() {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		s.safeCall(l.OnDisconnected)
	}
}

// safeCall isolates a listener panic from the connection loop.
func (s *Source) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("migration source listener panicked", logger.Any("recover", r))
		}
	}()
	fn()
}

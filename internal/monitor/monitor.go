// Package monitor implements the Token Monitor: it owns migration-event
// consumption, enrichment scheduling, and the bounded in-memory history of
// scored TokenRecords that the HTTP API and SSE gateway read from.
package monitor

import (
	"context"
	"sync"
	"time"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/migration"
	"migration-scorer/internal/observability"
	"migration-scorer/internal/orchestrator"
	"migration-scorer/internal/providers"
	"migration-scorer/pkg/logger"
)

const (
	maxHistory          = 100
	backfillBatchSize   = 5
	backfillBatchDelay  = 500 * time.Millisecond
	backfillTokenBudget = 8 * time.Second
	backfillListLimit   = 60
)

// Listener receives a newly scored TokenRecord as soon as it joins history.
type Listener interface {
	OnToken(domain.TokenRecord)
}

// Stats is the live snapshot of monitor throughput.
type Stats struct {
	Monitored int
	Passed    int
	Filtered  int
	InFlight  int
}

// Monitor owns the bounded token history, the migration subscription, and
// the backfill/live enrichment pipeline. Constructed once per process and
// passed explicitly to its dependents; tests construct fresh instances.
type Monitor struct {
	orch      *orchestrator.Orchestrator
	source    *migration.Source
	graduated *providers.GraduatedTokenIndex
	log       *logger.Logger

	mu      sync.Mutex
	history []domain.TokenRecord // most recent last; bounded to maxHistory
	index   map[string]int       // mint -> position in history
	stats   Stats

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int

	statusMu        sync.Mutex
	statusListeners map[int]func(connected bool)
	nextStatusID    int

	startOnce   sync.Once
	initialLoad chan struct{}

	unsubscribe func()
	inFlight    sync.WaitGroup
}

// New builds a Monitor. graduated may be nil, in which case backfill is
// skipped and the monitor starts directly in live mode.
func New(orch *orchestrator.Orchestrator, source *migration.Source, graduated *providers.GraduatedTokenIndex, log *logger.Logger) *Monitor {
	return &Monitor{
		orch:            orch,
		source:          source,
		graduated:       graduated,
		log:             log.With("monitor"),
		index:           make(map[string]int),
		listeners:       make(map[int]Listener),
		statusListeners: make(map[int]func(connected bool)),
		initialLoad:     make(chan struct{}),
	}
}

// SubscribeStatus registers fn to be called whenever the upstream Migration
// Source connects or disconnects, and returns an unsubscribe function.
func (m *Monitor) SubscribeStatus(fn func(connected bool)) func() {
	m.statusMu.Lock()
	id := m.nextStatusID
	m.nextStatusID++
	m.statusListeners[id] = fn
	m.statusMu.Unlock()

	return func() {
		m.statusMu.Lock()
		delete(m.statusListeners, id)
		m.statusMu.Unlock()
	}
}

func (m *Monitor) notifyStatus(connected bool) {
	m.statusMu.Lock()
	snapshot := make([]func(bool), 0, len(m.statusListeners))
	for _, fn := range m.statusListeners {
		snapshot = append(snapshot, fn)
	}
	m.statusMu.Unlock()

	for _, fn := range snapshot {
		fn(connected)
	}
}

// InitialLoadComplete reports whether backfill has finished (or was
// skipped because no GraduatedTokenIndex was wired).
func (m *Monitor) InitialLoadComplete() bool {
	select {
	case <-m.initialLoad:
		return true
	default:
		return false
	}
}

// WaitInitialLoad returns a channel closed once backfill completes.
func (m *Monitor) WaitInitialLoad() <-chan struct{} {
	return m.initialLoad
}

// EnsureStarted launches Start exactly once per Monitor, in the background.
// Safe to call from multiple concurrent Gateway subscribers.
func (m *Monitor) EnsureStarted(ctx context.Context) {
	m.startOnce.Do(func() {
		go m.Start(ctx)
	})
}

// Subscribe registers l for every future token added to history and returns
// an unsubscribe function.
func (m *Monitor) Subscribe(l Listener) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

// History returns a snapshot of the bounded FIFO, oldest first.
func (m *Monitor) History() []domain.TokenRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TokenRecord, len(m.history))
	copy(out, m.history)
	return out
}

// Stats returns a snapshot of current counters.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Start runs the backfill phase (if a GraduatedTokenIndex was wired) and
// then subscribes to live migrations. It returns once backfill completes;
// the live subscription continues in the background until ctx is done or
// Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	if m.source != nil {
		m.unsubscribe = m.source.Subscribe(monitorListener{m})
	}

	m.backfill(ctx)
	close(m.initialLoad)

	if m.source != nil {
		go m.source.Start(ctx)
	}
}

// Stop releases the migration subscription and waits for in-flight
// enrichments to drain.
func (m *Monitor) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.source != nil {
		m.source.Stop()
	}
	m.inFlight.Wait()
}

// IsConnected reports whether the upstream Migration Source currently holds
// an open WebSocket connection.
func (m *Monitor) IsConnected() bool {
	if m.source == nil {
		return false
	}
	return m.source.State() == migration.StateOpen
}

// Analyze runs an ad-hoc full-mode enrichment for a manually supplied event
// without inserting it into history: score it, but don't add it to the
// monitored set.
func (m *Monitor) Analyze(ctx context.Context, event domain.MigrationEvent) domain.TokenRecord {
	return m.orch.Enrich(ctx, event, domain.ModeFull)
}

// TestInject inserts r into history through the same path as a live token,
// for use by tests in other packages that need a populated Monitor without
// wiring a real Orchestrator/Source.
func (m *Monitor) TestInject(r domain.TokenRecord) {
	m.addRecord(r)
}

func (m *Monitor) backfill(ctx context.Context) {
	if m.graduated == nil {
		return
	}
	tokens := m.graduated.List(ctx, backfillListLimit)
	if len(tokens) == 0 {
		return
	}

	m.log.Info("starting backfill", logger.Int("count", len(tokens)))

	for i := 0; i < len(tokens); i += backfillBatchSize {
		end := i + backfillBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[i:end]

		var wg sync.WaitGroup
		for _, tok := range batch {
			wg.Add(1)
			go func(tok providers.GraduatedToken) {
				defer wg.Done()
				tctx, cancel := context.WithTimeout(ctx, backfillTokenBudget)
				defer cancel()
				event := domain.MigrationEvent{
					Mint:      tok.Mint,
					Name:      tok.Name,
					Symbol:    tok.Symbol,
					URI:       tok.Logo,
					Pool:      tok.PairAddress,
					Timestamp: tok.GraduatedAt,
					MarketCap: tok.FullyDilutedValuation,
					HasMarketCap: true,
					Liquidity: tok.Liquidity,
				}
				record := m.orch.Enrich(tctx, event, domain.ModeFast)
				m.addRecord(record)
			}(tok)
		}
		wg.Wait()

		if end < len(tokens) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backfillBatchDelay):
			}
		}
	}

	m.log.Info("backfill complete", logger.Int("historySize", len(m.History())))
}

// addRecord inserts r into the bounded FIFO, enforcing at most one entry
// per mint (a re-processed mint's old entry is removed and r is appended),
// updates stats for newly seen mints, and fans the record out to subscribers.
func (m *Monitor) addRecord(r domain.TokenRecord) {
	m.mu.Lock()
	if pos, exists := m.index[r.Address]; exists {
		m.history = append(m.history[:pos], m.history[pos+1:]...)
		for mint, p := range m.index {
			if p > pos {
				m.index[mint] = p - 1
			}
		}
		m.history = append(m.history, r)
		m.index[r.Address] = len(m.history) - 1
		m.mu.Unlock()
		m.notify(r)
		return
	}

	m.history = append(m.history, r)
	if len(m.history) > maxHistory {
		dropped := m.history[0]
		m.history = m.history[1:]
		delete(m.index, dropped.Address)
		for mint, pos := range m.index {
			m.index[mint] = pos - 1
		}
	}
	m.index[r.Address] = len(m.history) - 1

	m.stats.Monitored++
	if r.Analysis.Passed {
		m.stats.Passed++
	} else {
		m.stats.Filtered++
	}
	historySize := len(m.history)
	m.mu.Unlock()

	observability.UpdateHistorySize(historySize)
	observability.RecordScored(r.Analysis.Score, r.Analysis.Passed)
	m.notify(r)
}

func (m *Monitor) notify(r domain.TokenRecord) {
	m.listenersMu.Lock()
	snapshot := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		snapshot = append(snapshot, l)
	}
	m.listenersMu.Unlock()

	for _, l := range snapshot {
		l.OnToken(r)
	}
}

// monitorListener adapts migration.Listener to feed live events through the
// full enrichment path and into history.
type monitorListener struct {
	m *Monitor
}

func (l monitorListener) OnMigration(event domain.MigrationEvent) {
	l.m.inFlight.Add(1)
	go func() {
		defer l.m.inFlight.Done()
		ctx := context.Background()
		record := l.m.orch.Enrich(ctx, event, domain.ModeFull)
		l.m.addRecord(record)
	}()
}

func (l monitorListener) OnConnected()    { l.m.notifyStatus(true) }
func (l monitorListener) OnDisconnected() { l.m.notifyStatus(false) }

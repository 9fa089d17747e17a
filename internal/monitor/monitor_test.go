package monitor

import (
	"strconv"
	"testing"

	"migration-scorer/internal/domain"
	"migration-scorer/pkg/logger"
)

func newTestMonitor() *Monitor {
	return New(nil, nil, nil, logger.Default())
}

func TestAddRecordBoundedHistory(t *testing.T) {
	m := newTestMonitor()
	for i := 0; i < maxHistory+10; i++ {
		m.addRecord(domain.TokenRecord{Address: mintFor(i)})
	}
	if got := len(m.History()); got != maxHistory {
		t.Fatalf("history length = %d, want %d", got, maxHistory)
	}
}

func TestAddRecordDedupesByMint(t *testing.T) {
	m := newTestMonitor()
	m.addRecord(domain.TokenRecord{Address: "mint-a", Analysis: domain.AnalysisResult{Score: 10}})
	m.addRecord(domain.TokenRecord{Address: "mint-a", Analysis: domain.AnalysisResult{Score: 90}})

	history := m.History()
	count := 0
	var last domain.TokenRecord
	for _, r := range history {
		if r.Address == "mint-a" {
			count++
			last = r
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one entry for mint-a, got %d", count)
	}
	if last.Analysis.Score != 90 {
		t.Fatalf("expected updated record to replace the old one, got score %d", last.Analysis.Score)
	}
}

func TestSubscribeNotifiesNewTokens(t *testing.T) {
	m := newTestMonitor()
	var received []domain.TokenRecord
	unsubscribe := m.Subscribe(recordingListener{&received})

	m.addRecord(domain.TokenRecord{Address: "mint-b"})
	unsubscribe()
	m.addRecord(domain.TokenRecord{Address: "mint-c"})

	if len(received) != 1 || received[0].Address != "mint-b" {
		t.Fatalf("expected exactly one notification for mint-b, got %v", received)
	}
}

func TestStatsTracksPassedAndFiltered(t *testing.T) {
	m := newTestMonitor()
	m.addRecord(domain.TokenRecord{Address: "p1", Analysis: domain.AnalysisResult{Passed: true}})
	m.addRecord(domain.TokenRecord{Address: "f1", Analysis: domain.AnalysisResult{Passed: false}})

	stats := m.Stats()
	if stats.Monitored != 2 || stats.Passed != 1 || stats.Filtered != 1 {
		t.Fatalf("stats = %+v, want Monitored=2 Passed=1 Filtered=1", stats)
	}
}

type recordingListener struct {
	received *[]domain.TokenRecord
}

func (r recordingListener) OnToken(rec domain.TokenRecord) {
	*r.received = append(*r.received, rec)
}

func mintFor(i int) string {
	return "mint-" + strconv.Itoa(i)
}

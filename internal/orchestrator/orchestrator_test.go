package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/scoring"
	"migration-scorer/pkg/logger"
)

func TestEnrichWithAllProvidersAbsent(t *testing.T) {
	o := New(nil, nil, nil, nil, scoring.DefaultConfig(), logger.Default())

	event := domain.MigrationEvent{
		Mint:      "So11111111111111111111111111111111111111112",
		Timestamp: 1_700_000_000_000,
	}

	r := o.Enrich(context.Background(), event, domain.ModeFast)

	require.Equal(t, event.Mint, r.Address)
	assert.Equal(t, domain.UnknownHolderCount, r.Statistics.HolderCount)
	assert.False(t, r.Security.Present, "Security.Present should be false when no chain provider is wired")
	assert.GreaterOrEqual(t, r.Analysis.Score, 0)
	assert.LessOrEqual(t, r.Analysis.Score, 100)
	assert.Contains(t, r.Analysis.Flags, "Security data unavailable")
	assert.Greater(t, r.AnalyzedAt, r.MigrationTimestamp)
}

func TestEnrichReturnsRecordInFastAndFullMode(t *testing.T) {
	o := New(nil, nil, nil, nil, scoring.DefaultConfig(), logger.Default())

	event := domain.MigrationEvent{Mint: "mintFullMode", Timestamp: 1_700_000_000_000}

	fast := o.Enrich(context.Background(), event, domain.ModeFast)
	full := o.Enrich(context.Background(), event, domain.ModeFull)

	require.NotNil(t, fast)
	require.NotNil(t, full)
	assert.Equal(t, fast.Address, full.Address)
}

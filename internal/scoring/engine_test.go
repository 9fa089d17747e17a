package scoring

import (
	"encoding/json"
	"testing"

	"migration-scorer/internal/domain"
)

func hoursToMs(h float64) int64 {
	return int64(h * 3600000.0)
}

func baseRecord() domain.TokenRecord {
	return domain.TokenRecord{
		Address:            "mint1",
		Statistics:         domain.Statistics{HolderCount: domain.UnknownHolderCount},
		MigrationTimestamp: 1_700_000_000_000,
	}
}

func contains(list []string, want string) bool {
	for _, f := range list {
		if f == want {
			return true
		}
	}
	return false
}

func TestScenarioSafeMatureToken(t *testing.T) {
	r := baseRecord()
	r.AnalyzedAt = r.MigrationTimestamp + hoursToMs(72)
	r.Statistics = domain.Statistics{
		HolderCount:        1200,
		UniqueTraders:      700,
		Top10Concentration: 0.22,
		DevHoldings:        0.01,
		LiquidityRatio:     80000.0 / 500000.0,
	}
	r.PriceData = domain.PriceData{
		Buys24h: 480, Sells24h: 520, Trades24h: 1000,
		Liquidity: 80000, MarketCap: 500000, Volume24h: 200000,
	}
	r.Security = domain.Security{
		Present: true, MintAuthorityRevoked: true, FreezeAuthorityRevoked: true,
		LPLocked: true, LPLockPercentage: 1.0,
	}
	r.Metadata = domain.Metadata{Twitter: "yes", Website: "yes"}

	result := Score(r, DefaultConfig())

	if result.Score < 85 {
		t.Errorf("score = %d, want >= 85", result.Score)
	}
	if !result.Passed {
		t.Errorf("passed = false, want true")
	}
	if result.DangerScore.Category != domain.CategorySafe {
		t.Errorf("category = %v, want SAFE", result.DangerScore.Category)
	}
	for _, want := range []string{flagTokenAgeOver24h, flagStrongHolderBase, flagBalancedTrading, flagHealthyLiquidityRatio} {
		if !contains(result.PositiveSignals, want) {
			t.Errorf("positiveSignals missing %q, got %v", want, result.PositiveSignals)
		}
	}
}

func TestScenarioRugInProgress(t *testing.T) {
	r := baseRecord()
	r.AnalyzedAt = r.MigrationTimestamp + hoursToMs(4)
	r.Statistics = domain.Statistics{
		HolderCount:             60,
		Top10Concentration:      0.78,
		LargestHolderPercentage: 0.42,
	}
	r.PriceData = domain.PriceData{
		Buys24h: 40, Sells24h: 260, Trades24h: 300,
		Liquidity: 1200, MarketCap: 150000,
	}

	result := Score(r, DefaultConfig())

	if !contains(result.Flags, flagRugInProgress) {
		t.Errorf("flags missing %q, got %v", flagRugInProgress, result.Flags)
	}
	if !result.CompositeRisks.CoordinatedDump {
		t.Errorf("coordinatedDump = false, want true")
	}
	if result.DangerScore.Category != domain.CategoryHighRisk && result.DangerScore.Category != domain.CategoryExtreme {
		t.Errorf("category = %v, want HIGH_RISK or EXTREME", result.DangerScore.Category)
	}
	if result.Passed {
		t.Errorf("passed = true, want false")
	}
}

func TestScenarioPumpSetup(t *testing.T) {
	r := baseRecord()
	r.AnalyzedAt = r.MigrationTimestamp + hoursToMs(2)
	r.Statistics = domain.Statistics{HolderCount: 45}
	r.PriceData = domain.PriceData{
		Buys24h: 900, Sells24h: 120, Trades24h: 1020,
		Liquidity: 8000, MarketCap: 40000,
	}

	result := Score(r, DefaultConfig())

	if !result.CompositeRisks.PumpSetup {
		t.Errorf("pumpSetup = false, want true")
	}
	if result.DangerScore.Overall < 60 {
		t.Errorf("danger = %d, want >= 60", result.DangerScore.Overall)
	}
}

func TestScenarioSerialScammer(t *testing.T) {
	r := baseRecord()
	r.AnalyzedAt = r.MigrationTimestamp + hoursToMs(24)
	r.CreatorHistory = domain.CreatorHistory{
		TokenCount:      35,
		RuggedTokens:    10,
		RecentTokens:    make([]string, 12),
		IsSerialCreator: true,
	}

	result := Score(r, DefaultConfig())

	if result.Breakdown["CreatorHistory"].Penalty != 35 {
		t.Errorf("CreatorHistory penalty = %d, want 35 (cap)", result.Breakdown["CreatorHistory"].Penalty)
	}
	if !contains(result.Flags, flagSerialScammer) {
		t.Errorf("flags missing %q, got %v", flagSerialScammer, result.Flags)
	}
}

func TestScenarioUnknownHolders(t *testing.T) {
	r := baseRecord()
	r.AnalyzedAt = r.MigrationTimestamp + hoursToMs(24)
	r.Statistics = domain.Statistics{HolderCount: domain.UnknownHolderCount, Top10Concentration: 0.0}

	result := Score(r, DefaultConfig())

	if contains(result.Flags, flagLowHolders) {
		t.Errorf("flags should not contain %q, got %v", flagLowHolders, result.Flags)
	}
	if result.Breakdown["HolderDistribution"].Penalty != 0 {
		t.Errorf("HolderDistribution penalty = %d, want 0", result.Breakdown["HolderDistribution"].Penalty)
	}
	if result.DangerScore.Confidence == domain.DangerConfidenceLow {
		t.Errorf("confidence = low, want at worst medium")
	}
}

func TestUniversalInvariants(t *testing.T) {
	records := []domain.TokenRecord{
		baseRecord(),
		func() domain.TokenRecord {
			r := baseRecord()
			r.Statistics.HolderCount = 10
			r.PriceData = domain.PriceData{Buys24h: 1, Sells24h: 1, Trades24h: 2, Liquidity: 100, MarketCap: 1000}
			return r
		}(),
	}

	for i, r := range records {
		result := Score(r, DefaultConfig())
		if result.Score < 0 || result.Score > 100 {
			t.Errorf("record %d: score out of range: %d", i, result.Score)
		}
		if result.DangerScore.Overall < 0 || result.DangerScore.Overall > 100 {
			t.Errorf("record %d: danger out of range: %d", i, result.DangerScore.Overall)
		}
		if result.Passed != (result.Score >= DefaultConfig().MinScore) {
			t.Errorf("record %d: passed inconsistent with score/minScore", i)
		}
	}
}

func TestScoringIsPure(t *testing.T) {
	r := baseRecord()
	r.Statistics.HolderCount = 300
	r.PriceData.Liquidity = 1000
	r.PriceData.MarketCap = 10000

	a := Score(r, DefaultConfig())
	b := Score(r, DefaultConfig())

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Errorf("Score is not pure: got different results for identical input")
	}
}

func TestRoundTripJSON(t *testing.T) {
	r := baseRecord()
	r.Statistics.HolderCount = 150
	r.PriceData.MarketCap = 20000
	r.PriceData.Liquidity = 2000

	before := Score(r, DefaultConfig())
	r.Analysis = before

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var r2 domain.TokenRecord
	if err := json.Unmarshal(data, &r2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	after := Score(r2, DefaultConfig())
	if before.Score != after.Score {
		t.Errorf("round-trip score mismatch: %d vs %d", before.Score, after.Score)
	}
}

func TestBoundaryMinScoreZeroAndAboveMax(t *testing.T) {
	r := baseRecord()
	r.Statistics.HolderCount = 5
	r.PriceData = domain.PriceData{Buys24h: 1, Sells24h: 99, Trades24h: 100}

	cfgAllPass := DefaultConfig()
	cfgAllPass.MinScore = 0
	if !Score(r, cfgAllPass).Passed {
		t.Errorf("minScore=0 should make every record pass")
	}

	cfgNonePass := DefaultConfig()
	cfgNonePass.MinScore = 101
	if Score(r, cfgNonePass).Passed {
		t.Errorf("minScore=101 should make no record pass")
	}
}

func TestBoundaryZeroLiquidityPositiveMarketCap(t *testing.T) {
	r := baseRecord()
	r.PriceData.MarketCap = 50000
	r.PriceData.Liquidity = 0
	r.Statistics.LiquidityRatio = 0

	result := Score(r, DefaultConfig())
	if !contains(result.Flags, flagDangerouslyLowLiquidity) {
		t.Errorf("expected dangerously low liquidity flag once, got %v", result.Flags)
	}
}

func TestBoundaryZeroMarketCapSkipsRatioChecks(t *testing.T) {
	r := baseRecord()
	r.PriceData.MarketCap = 0
	r.PriceData.Liquidity = 3000
	r.Statistics.LiquidityRatio = 0
	r.Statistics.VolumeToLiquidityRatio = 50

	result := Score(r, DefaultConfig())
	if contains(result.Flags, flagDangerouslyLowLiquidity) || contains(result.Flags, flagHealthyLiquidityRatio) {
		t.Errorf("ratio-based liquidity flags should be skipped when marketCap=0, got %v", result.Flags)
	}
	if contains(result.Flags, flagHighVolumeToLiquidity) {
		t.Errorf("volume/liquidity check should be skipped when marketCap=0, got %v", result.Flags)
	}
}

func TestPropertyCheckPenaltyWithinCap(t *testing.T) {
	r := baseRecord()
	r.Statistics = domain.Statistics{
		HolderCount: 5, Top10Concentration: 0.95, LargestHolderPercentage: 0.9, DevHoldings: 0.9,
	}
	r.PriceData = domain.PriceData{Buys24h: 1, Sells24h: 999, Trades24h: 1000, Liquidity: 1, MarketCap: 1000000}
	r.Security = domain.Security{Present: true, IsRugpullRisk: true, TopHoldersAreContracts: true}
	r.CreatorHistory = domain.CreatorHistory{TokenCount: 50, RuggedTokens: 20}

	result := Score(r, DefaultConfig())
	for name, cr := range result.Breakdown {
		if cr.Penalty < 0 || cr.Penalty > cr.MaxScore {
			t.Errorf("check %s: penalty %d exceeds maxScore %d", name, cr.Penalty, cr.MaxScore)
		}
	}
}

func TestPropertyDangerScorePlusScoreBound(t *testing.T) {
	r := baseRecord()
	r.Statistics = domain.Statistics{HolderCount: 5, Top10Concentration: 0.9, LargestHolderPercentage: 0.9}
	r.PriceData = domain.PriceData{Buys24h: 1, Sells24h: 999, Trades24h: 1000, Liquidity: 1, MarketCap: 1000000}

	result := Score(r, DefaultConfig())
	if result.DangerScore.Overall+result.Score > 160 {
		t.Errorf("dangerScore.overall + score = %d, want <= 160", result.DangerScore.Overall+result.Score)
	}
}

// Package scoring implements the pure, synchronous, deterministic Scoring
// Engine: TokenRecord -> AnalysisResult. No check may perform I/O or
// observe wall-clock time directly; every time-relative signal is computed
// against the record's own AnalyzedAt field so that scoring a given record
// twice always yields the same result.
package scoring

import (
	"math"

	"migration-scorer/internal/domain"
)

// checkNames lists every check in evaluation order; it doubles as the set
// of keys in AnalysisResult.Breakdown.
var checkNames = []string{
	"WashTrading", "HolderDistribution", "DeveloperHoldings", "VolumeManipulation",
	"AirdropScheme", "SocialSignals", "TokenAge", "BuyPressure", "LiquidityHealth",
	"Security", "Snipers", "WalletFunding", "TradeVelocity", "CreatorHistory",
}

// derived holds values computed once from r and shared across checks, so
// that no check needs to recompute a ratio or reach past the record.
type derived struct {
	ageHours        float64
	totalTrades24h  int
	buyRatio24h     float64
	hasTrades24h    bool
	tradesPerTrader float64
	tradesPerHolder float64
}

func computeDerived(r domain.TokenRecord) derived {
	d := derived{}

	refTime := r.PriceData.PairCreatedAt
	if refTime == 0 {
		refTime = r.MigrationTimestamp
	}
	if refTime > 0 && r.AnalyzedAt > refTime {
		d.ageHours = float64(r.AnalyzedAt-refTime) / 3600000.0
	}

	total := r.PriceData.Buys24h + r.PriceData.Sells24h
	d.totalTrades24h = total
	if total > 0 {
		d.buyRatio24h = float64(r.PriceData.Buys24h) / float64(total)
		d.hasTrades24h = true
	}

	if r.Statistics.UniqueTraders > 0 {
		d.tradesPerTrader = float64(r.PriceData.Trades24h) / float64(r.Statistics.UniqueTraders)
	}
	if r.Statistics.HolderCount > 0 {
		d.tradesPerHolder = float64(r.PriceData.Trades24h) / float64(r.Statistics.HolderCount)
	}

	return d
}

// Score runs the full check catalog, composite risks, bonuses, and danger
// score computation over r and returns the finished AnalysisResult.
func Score(r domain.TokenRecord, cfg Config) domain.AnalysisResult {
	d := computeDerived(r)

	breakdown := make(map[string]domain.CheckResult, len(checkNames))
	breakdown["WashTrading"] = checkWashTrading(r, d)
	breakdown["HolderDistribution"] = checkHolderDistribution(r, cfg)
	breakdown["DeveloperHoldings"] = checkDeveloperHoldings(r, cfg)
	breakdown["VolumeManipulation"] = checkVolumeManipulation(r, cfg, d)
	breakdown["AirdropScheme"] = checkAirdropScheme(r)
	breakdown["SocialSignals"] = checkSocialSignals(r)
	breakdown["TokenAge"] = checkTokenAge(d)
	breakdown["BuyPressure"] = checkBuyPressure(r, d)
	breakdown["LiquidityHealth"] = checkLiquidityHealth(r)
	breakdown["Security"] = checkSecurity(r)
	breakdown["Snipers"] = checkSnipers(r)
	breakdown["WalletFunding"] = checkWalletFunding(r)
	breakdown["TradeVelocity"] = checkTradeVelocity(r, d)
	breakdown["CreatorHistory"] = checkCreatorHistory(r)

	score := 100
	var flags []string
	for _, name := range checkNames {
		cr := breakdown[name]
		score -= cr.Penalty
		flags = append(flags, cr.Flags...)
	}

	composite := computeCompositeRisks(r, d, breakdown)
	compositePenalty, compositeFlags := compositeRiskPenalty(composite)
	score -= compositePenalty
	flags = append(flags, compositeFlags...)

	positiveFlags, bonusTotal := computeBonuses(r, d, flags)
	score += bonusTotal

	score = clamp(score, 0, 100)

	dangerScore := computeDangerScore(score, composite, r, flags, positiveFlags)

	return domain.AnalysisResult{
		Passed:          score >= cfg.MinScore,
		Score:           score,
		Flags:           flags,
		Breakdown:       breakdown,
		DangerScore:     dangerScore,
		CompositeRisks:  composite,
		PositiveSignals: positiveFlags,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampPenalty(penalty, cap int) int {
	if penalty > cap {
		return cap
	}
	if penalty < 0 {
		return 0
	}
	return penalty
}

func hasFlag(flags []string, substr string) bool {
	for _, f := range flags {
		if containsFold(f, substr) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return len(s) >= len(substr) && indexFold(s, substr) >= 0
}

func indexFold(s, substr string) int {
	sl, subl := toLower(s), toLower(substr)
	n := len(sl) - len(subl)
	for i := 0; i <= n; i++ {
		if sl[i:i+len(subl)] == subl {
			return i
		}
	}
	return -1
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isFiniteNonNeg(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

package scoring

import "migration-scorer/internal/domain"

type bonus struct {
	amount int
	label  string
}

const maxBonusTotal = 25

// flagBonusPoints gives a point value to each zero-penalty "all clear" flag
// that a check can emit. These are the checks' own positive findings, not a
// separate mechanism: a flag only ever reaches this map if some check chose
// to emit it instead of a penalty flag.
var flagBonusPoints = map[string]int{
	flagTokenAgeOver24h:       5,
	flagTokenMature72h:        5,
	flagStrongHolderBase:      5,
	flagModerateHolderBase:    3,
	flagBalancedTrading:       5,
	flagHealthyLiquidityRatio: 5,
	flagFullySecuredContract:  5,
}

// computeBonuses derives every positive signal that fired from the check
// flags that already fired, independent of the capped score increment: a
// signal still belongs in positiveSignals even once the running total has
// exhausted maxBonusTotal, so the list always reflects what actually fired
// rather than what fit under the cap. The increment itself is capped.
func computeBonuses(r domain.TokenRecord, d derived, flags []string) (signals []string, total int) {
	var candidates []bonus
	for _, f := range flags {
		if points, ok := flagBonusPoints[f]; ok {
			candidates = append(candidates, bonus{points, f})
		}
	}

	if r.Metadata.Twitter != "" && r.Metadata.Website != "" {
		candidates = append(candidates, bonus{3, flagSocialPresenceConfirmed})
	}

	for _, b := range candidates {
		signals = append(signals, b.label)
		total += b.amount
	}
	if total > maxBonusTotal {
		total = maxBonusTotal
	}
	return signals, total
}

// primaryRiskPriority is the fixed order used to select at most three
// primary risks for the DangerScore, most severe first.
var primaryRiskPriority = []string{
	flagRugInProgress,
	flagCoordinatedDump,
	flagInsiderAccumulation,
	flagPumpSetup,
	flagDumpInProgress,
	flagMegaWhale,
	flagMintNotRevoked,
	flagLPNotLocked,
	flagBundledLaunch,
	flagVeryHighConcentration,
	flagDangerouslyLowLiquidity,
	flagHeavySniperActivity,
	flagLowHolders,
	flagNoSocialLinks,
}

// computeDangerScore derives the inverse danger score, its confidence, its
// display category, and the ordered list of primary risks from the already
// finished safety score, composite risks, and flag set.
func computeDangerScore(score int, composite domain.CompositeRisks, r domain.TokenRecord, flags, positiveFlags []string) domain.DangerScore {
	overall := 100 - score
	if composite.RugInProgress {
		overall += 20
	}
	if composite.PumpSetup {
		overall += 15
	}
	if composite.WashTrading {
		overall += 10
	}
	if composite.CoordinatedDump {
		overall += 10
	}
	if composite.InsiderAccumulation {
		overall += 5
	}
	overall = clamp(overall, 0, 100)

	confidence := domain.DangerConfidenceHigh
	switch {
	case r.Statistics.HolderCount <= 0:
		confidence = domain.DangerConfidenceMedium
	case !r.Security.Present || r.PriceData.Trades24h == 0:
		confidence = domain.DangerConfidenceLow
	}

	var category domain.DangerCategory
	switch {
	case overall < 20:
		category = domain.CategorySafe
	case overall < 40:
		category = domain.CategoryLowRisk
	case overall < 60:
		category = domain.CategoryModerate
	case overall < 80:
		category = domain.CategoryHighRisk
	default:
		category = domain.CategoryExtreme
	}

	var primary []string
	for _, candidate := range primaryRiskPriority {
		if len(primary) == 3 {
			break
		}
		if hasFlag(flags, candidate) {
			primary = append(primary, candidate)
		}
	}

	return domain.DangerScore{
		Overall:         overall,
		Confidence:      confidence,
		Category:        category,
		PrimaryRisks:    primary,
		PositiveSignals: positiveFlags,
	}
}

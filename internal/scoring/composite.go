package scoring

import "migration-scorer/internal/domain"

// computeCompositeRisks evaluates the five composite risk patterns, each a
// boolean combination over the raw record, derived values, and the
// individual check outcomes already computed in Breakdown. Composite risks
// are evaluated after every individual check so a composite can reference a
// check's outcome (the rug-in-progress and wash-trading composites read
// Breakdown) without recomputing it.
func computeCompositeRisks(r domain.TokenRecord, d derived, breakdown map[string]domain.CheckResult) domain.CompositeRisks {
	return domain.CompositeRisks{
		RugInProgress:       isRugInProgress(d, breakdown),
		PumpSetup:           isPumpSetup(r, d),
		WashTrading:         isWashTradingComposite(d, breakdown),
		CoordinatedDump:     isCoordinatedDump(r, d),
		InsiderAccumulation: isInsiderAccumulation(r, breakdown),
	}
}

// isRugInProgress: the HolderDistribution check already flagged a whale or
// very-high-concentration holder, the 24h flow is dominated by sells, and
// the token is still young -- the signature of a holder (or the dev)
// dumping supply shortly after migration.
func isRugInProgress(d derived, breakdown map[string]domain.CheckResult) bool {
	whale := hasFlag(breakdown["HolderDistribution"].Flags, flagVeryHighConcentration) ||
		hasFlag(breakdown["HolderDistribution"].Flags, flagMegaWhale)
	dumping := d.hasTrades24h && d.buyRatio24h < 0.30
	return whale && dumping && d.ageHours < 12
}

// isPumpSetup: extreme, sustained buy pressure at a very young age, spread
// over few or unknown holders, with real volume behind it -- consistent
// with a coordinated buy wall staged to inflate price before an exit.
func isPumpSetup(r domain.TokenRecord, d derived) bool {
	buyHeavy := d.hasTrades24h && d.buyRatio24h > 0.85
	fewHolders := r.Statistics.HolderCount == domain.UnknownHolderCount || r.Statistics.HolderCount < 100
	young := d.ageHours < 6
	hasVolume := r.PriceData.Trades24h > 100
	return buyHeavy && fewHolders && young && hasVolume
}

// isWashTradingComposite: trades per holder are far above organic levels
// and the TradeVelocity check's own penalty agrees it's more than a minor
// signal.
func isWashTradingComposite(d derived, breakdown map[string]domain.CheckResult) bool {
	return d.tradesPerHolder > 10 && breakdown["TradeVelocity"].Penalty > 5
}

// isCoordinatedDump: high trading volume dominated by sells on a token
// that's still young -- several holders exiting together rather than
// organic distributed selling.
func isCoordinatedDump(r domain.TokenRecord, d derived) bool {
	sellHeavy := d.hasTrades24h && d.buyRatio24h < 0.20
	highVolume := r.PriceData.Trades24h > 50
	young := d.ageHours < 24
	return sellHeavy && highVolume && young
}

// isInsiderAccumulation: bundled buys at launch plus wallet clustering
// among funders, on a token where HolderDistribution already flagged a
// whale -- consistent with insiders splitting accumulation across wallets.
func isInsiderAccumulation(r domain.TokenRecord, breakdown map[string]domain.CheckResult) bool {
	bundled := r.LaunchAnalysis.BundledBuys > 2
	clustered := r.WalletFunding.ClusteredWallets >= 2
	whale := hasFlag(breakdown["HolderDistribution"].Flags, flagMegaWhale)
	return bundled && clustered && whale
}

// compositeRiskPenalty applies the fixed additional penalties for whichever
// composite risks fired, in the documented order, and returns their flags.
func compositeRiskPenalty(c domain.CompositeRisks) (int, []string) {
	penalty := 0
	var flags []string

	if c.RugInProgress {
		penalty += 20
		flags = append(flags, flagRugInProgress)
	}
	if c.PumpSetup {
		penalty += 10
		flags = append(flags, flagPumpSetup)
	}
	if c.WashTrading {
		penalty += 10
		flags = append(flags, flagWashTradingComposite)
	}
	if c.CoordinatedDump {
		penalty += 15
		flags = append(flags, flagCoordinatedDump)
	}
	if c.InsiderAccumulation {
		penalty += 15
		flags = append(flags, flagInsiderAccumulation)
	}

	return penalty, flags
}

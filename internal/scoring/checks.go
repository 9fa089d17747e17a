package scoring

import "migration-scorer/internal/domain"

// checkWashTrading approximates "any wallet with >5 buys AND >5 sells, or a
// mean inter-trade interval under 30s" from aggregate fields only: TokenRecord
// carries no per-wallet trade ledger, so trades-per-trader and the
// volume/liquidity ratio stand in for the literal per-wallet signal.
func checkWashTrading(r domain.TokenRecord, d derived) domain.CheckResult {
	const cap = 20
	penalty := 0
	var flags []string

	if d.tradesPerTrader >= 8 {
		penalty += 14
		flags = append(flags, flagWashTradingPattern)
	} else if d.tradesPerTrader >= 5 {
		penalty += 8
		flags = append(flags, flagRapidRepeatedTrading)
	}

	if r.Statistics.VolumeToLiquidityRatio >= 15 && d.totalTrades24h >= 20 {
		penalty += 10
		if len(flags) == 0 {
			flags = append(flags, flagWashTradingPattern)
		}
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkHolderDistribution(r domain.TokenRecord, cfg Config) domain.CheckResult {
	const cap = 25
	penalty := 0
	var flags []string

	if r.Statistics.HolderCount != domain.UnknownHolderCount {
		switch {
		case r.Statistics.HolderCount < cfg.MinHolders:
			penalty += 15
			flags = append(flags, flagLowHolders)
		case r.Statistics.HolderCount < 2*cfg.MinHolders:
			penalty += 8
			flags = append(flags, flagModerateHolders)
		}
	}

	switch {
	case r.Statistics.Top10Concentration > 0.50:
		penalty += 15
		flags = append(flags, flagVeryHighConcentration)
	case r.Statistics.Top10Concentration > cfg.MaxTop10:
		penalty += 10
		flags = append(flags, flagHighConcentration)
	}

	switch {
	case r.Statistics.LargestHolderPercentage > 0.30:
		penalty += 10
		flags = append(flags, flagMegaWhale)
	case r.Statistics.LargestHolderPercentage > 0.20:
		penalty += 6
		flags = append(flags, flagLargeHolder)
	}

	switch {
	case r.Statistics.HolderCount >= 500:
		flags = append(flags, flagStrongHolderBase)
	case r.Statistics.HolderCount >= 200:
		flags = append(flags, flagModerateHolderBase)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkDeveloperHoldings(r domain.TokenRecord, cfg Config) domain.CheckResult {
	const cap = 15
	penalty := 0
	var flags []string

	switch {
	case r.Statistics.DevHoldings >= 0.30:
		penalty = 15
		flags = append(flags, flagHighDevHoldings)
	case r.Statistics.DevHoldings >= 0.20:
		penalty = 10
		flags = append(flags, flagElevatedDevHoldings)
	case r.Statistics.DevHoldings >= cfg.MaxDevHoldings:
		penalty = 5
		flags = append(flags, flagModerateDevHoldings)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkVolumeManipulation(r domain.TokenRecord, cfg Config, d derived) domain.CheckResult {
	const cap = 20
	penalty := 0
	var flags []string

	if d.totalTrades24h >= 10 && r.Statistics.UniqueTraders > 0 {
		ratio := float64(r.Statistics.UniqueTraders) / float64(d.totalTrades24h)
		switch {
		case ratio < 0.30:
			penalty += 15
			flags = append(flags, flagLowUniqueTraderRatio)
		case ratio < cfg.MinUniqueRatio:
			penalty += 8
			flags = append(flags, flagModerateUniqueTraderRatio)
		}
	}

	if r.PriceData.Volume24h > 0 && d.totalTrades24h > 0 {
		avgTradeSize := r.PriceData.Volume24h / float64(d.totalTrades24h)
		if avgTradeSize > 0 && avgTradeSize < 5 && d.totalTrades24h >= 30 {
			penalty += 8
			flags = append(flags, flagMicroBuyPattern)
		}
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

// checkAirdropScheme approximates "pre-first-trade TRANSFERs whose recipients
// later sell" with FreshWalletBuyers, the closest aggregate proxy available
// on TokenRecord.
func checkAirdropScheme(r domain.TokenRecord) domain.CheckResult {
	const cap = 15
	penalty := 0
	var flags []string

	if r.WalletFunding.FreshWalletBuyers >= 15 && r.WalletFunding.SuspiciousFundingPattern {
		penalty = 15
		flags = append(flags, flagAirdropDumpScheme)
	} else if r.WalletFunding.FreshWalletBuyers >= 8 {
		penalty = 7
		flags = append(flags, flagPossibleAirdropFarming)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkSocialSignals(r domain.TokenRecord) domain.CheckResult {
	const cap = 10
	penalty := 0
	var flags []string

	hasTwitter := r.Metadata.Twitter != ""
	hasTelegram := r.Metadata.Telegram != ""
	hasWebsite := r.Metadata.Website != ""

	switch {
	case !hasTwitter && !hasTelegram:
		penalty += 6
		flags = append(flags, flagNoSocialLinks)
	case !hasTwitter:
		penalty += 3
		flags = append(flags, flagNoTwitter)
	}

	if !hasWebsite {
		penalty += 2
		flags = append(flags, flagNoWebsite)
	}

	if len(r.Metadata.Description) > 0 && len(r.Metadata.Description) < 10 {
		penalty += 3
		flags = append(flags, flagGenericDescription)
	}

	if !hasTwitter && looksLikeImpersonation(r.Metadata.Name, r.Metadata.Symbol) {
		penalty += 4
		flags = append(flags, flagImpersonationRisk)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkTokenAge(d derived) domain.CheckResult {
	const cap = 15
	penalty := 0
	var flags []string

	switch {
	case d.ageHours < 0.5:
		penalty = 15
		flags = append(flags, flagVeryYoungToken)
	case d.ageHours < 1:
		penalty = 10
		flags = append(flags, flagYoungToken)
	case d.ageHours < 6:
		penalty = 5
		flags = append(flags, flagRecentToken)
	}

	if d.ageHours >= 24 {
		flags = append(flags, flagTokenAgeOver24h)
	}
	if d.ageHours >= 72 {
		flags = append(flags, flagTokenMature72h)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkBuyPressure(r domain.TokenRecord, d derived) domain.CheckResult {
	const cap = 15
	penalty := 0
	var flags []string

	if d.hasTrades24h {
		switch {
		case d.buyRatio24h < 0.20:
			penalty += 15
			flags = append(flags, flagDumpInProgress)
		case d.buyRatio24h > 0.90:
			penalty += 10
			flags = append(flags, flagHighBuyPressure)
		case d.buyRatio24h > 0.80:
			penalty += 5
			flags = append(flags, flagModerateBuyPressure)
		default:
			flags = append(flags, flagBalancedTrading)
		}
	}

	trades5m := r.PriceData.Buys5m + r.PriceData.Sells5m
	trades1h := r.PriceData.Buys1h + r.PriceData.Sells1h
	if trades1h > 0 && float64(trades5m) > 5*float64(trades1h)/12.0 {
		penalty += 8
		flags = append(flags, flagVolumeSpike)
	}

	if abs(r.PriceData.PriceChange5m) > 30 {
		penalty += 10
		flags = append(flags, flagPriceVolatility5m)
	} else if abs(r.PriceData.PriceChange1h) > 50 {
		penalty += 8
		flags = append(flags, flagPriceVolatility1h)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

// checkLiquidityHealth skips both ratio-based bands when marketCap is 0 --
// the ratios are undefined, not zero, so they must not read as "healthy" or
// "dangerously low". liquidity=0 with marketCap>0 is a real, defined ratio
// of 0 and still runs through the normal lowest band.
func checkLiquidityHealth(r domain.TokenRecord) domain.CheckResult {
	const cap = 20
	penalty := 0
	var flags []string

	if r.PriceData.MarketCap > 0 {
		switch {
		case r.Statistics.LiquidityRatio < 0.02:
			penalty += 20
			flags = append(flags, flagDangerouslyLowLiquidity)
		case r.Statistics.LiquidityRatio < 0.05:
			penalty += 12
			flags = append(flags, flagLowLiquidity)
		case r.Statistics.LiquidityRatio < 0.10:
			penalty += 5
			flags = append(flags, flagModerateLiquidity)
		default:
			flags = append(flags, flagHealthyLiquidityRatio)
		}

		switch {
		case r.Statistics.VolumeToLiquidityRatio > 20:
			penalty += 10
			flags = append(flags, flagHighVolumeToLiquidity)
		case r.Statistics.VolumeToLiquidityRatio > 10:
			penalty += 5
			flags = append(flags, flagModerateVolumeToLiquidity)
		}
	}

	switch {
	case r.PriceData.Liquidity < 5000:
		penalty += 10
		flags = append(flags, flagLowAbsoluteLiquidity)
	case r.PriceData.Liquidity < 10000:
		penalty += 5
		flags = append(flags, flagModerateAbsoluteLiquidity)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkSecurity(r domain.TokenRecord) domain.CheckResult {
	const cap = 25

	if !r.Security.Present {
		return domain.CheckResult{Penalty: clampPenalty(5, cap), MaxScore: cap, Flags: []string{flagSecurityDataUnavailable}}
	}

	penalty := 0
	var flags []string

	if !r.Security.MintAuthorityRevoked {
		penalty += 15
		flags = append(flags, flagMintNotRevoked)
	}
	if !r.Security.FreezeAuthorityRevoked {
		penalty += 10
		flags = append(flags, flagFreezeNotRevoked)
	}
	if !r.Security.LPLocked && r.Security.LPLockPercentage < 0.80 {
		penalty += 15
		flags = append(flags, flagLPNotLocked)
	}
	if r.Security.LPLockPercentage < 0.50 {
		penalty += 8
		flags = append(flags, flagLPLockLow)
	}
	if r.Security.TopHoldersAreContracts {
		penalty += 10
		flags = append(flags, flagHoneypotRisk)
	}
	if r.Security.IsRugpullRisk {
		penalty += 5
		flags = append(flags, flagRugpullRisk)
	}

	if penalty == 0 {
		flags = append(flags, flagFullySecuredContract)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkSnipers(r domain.TokenRecord) domain.CheckResult {
	const cap = 20
	penalty := 0
	var flags []string

	switch {
	case r.LaunchAnalysis.BundledBuys > 3:
		penalty += 15
		flags = append(flags, flagBundledLaunch)
	case r.LaunchAnalysis.BundledBuys > 1:
		penalty += 8
		flags = append(flags, flagModerateBundledBuys)
	}

	switch {
	case r.LaunchAnalysis.SniperCount > 20:
		penalty += 12
		flags = append(flags, flagHeavySniperActivity)
	case r.LaunchAnalysis.SniperCount > 10:
		penalty += 6
		flags = append(flags, flagModerateSniperActivity)
	}

	switch {
	case r.LaunchAnalysis.AvgFirstBuySize > 5:
		penalty += 10
		flags = append(flags, flagLargeFirstBuy)
	case r.LaunchAnalysis.AvgFirstBuySize > 2:
		penalty += 5
		flags = append(flags, flagModerateFirstBuy)
	}

	if r.LaunchAnalysis.CreatorBoughtBack {
		penalty += 8
		flags = append(flags, flagCreatorBoughtBack)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkWalletFunding(r domain.TokenRecord) domain.CheckResult {
	const cap = 25
	penalty := 0
	var flags []string

	switch {
	case r.WalletFunding.ClusteredWallets >= 5:
		penalty += 20
		flags = append(flags, flagWalletClustering)
	case r.WalletFunding.ClusteredWallets >= 3:
		penalty += 12
		flags = append(flags, flagModerateWalletClustering)
	case r.WalletFunding.ClusteredWallets >= 2:
		penalty += 5
		flags = append(flags, flagMinorWalletClustering)
	}

	switch {
	case r.WalletFunding.FreshWalletBuyers >= 5:
		penalty += 15
		flags = append(flags, flagFreshWalletSurge)
	case r.WalletFunding.FreshWalletBuyers >= 3:
		penalty += 8
		flags = append(flags, flagModerateFreshWallets)
	}

	if r.WalletFunding.SuspiciousFundingPattern {
		penalty += 5
		flags = append(flags, flagSuspiciousFundingPattern)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkTradeVelocity(r domain.TokenRecord, d derived) domain.CheckResult {
	const cap = 15
	penalty := 0
	var flags []string

	switch {
	case d.tradesPerHolder > 20:
		penalty = 15
		flags = append(flags, flagHighTradeVelocity)
	case d.tradesPerHolder > 10:
		penalty = 10
		flags = append(flags, flagModerateTradeVelocity)
	case d.tradesPerHolder > 5:
		penalty = 5
		flags = append(flags, flagElevatedTradeVelocity)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func checkCreatorHistory(r domain.TokenRecord) domain.CheckResult {
	const cap = 35
	penalty := 0
	var flags []string

	if r.CreatorHistory.IsSerialCreator || len(r.CreatorHistory.RecentTokens) > 0 {
		switch {
		case len(r.CreatorHistory.RecentTokens) >= 10:
			penalty += 30
			flags = append(flags, flagSerialScammer)
		case len(r.CreatorHistory.RecentTokens) >= 5:
			penalty += 20
			flags = append(flags, flagSerialScammer)
		case len(r.CreatorHistory.RecentTokens) >= 3:
			penalty += 12
			flags = append(flags, flagRecentRugHistory)
		}
	}

	switch {
	case r.CreatorHistory.TokenCount >= 20:
		penalty += 15
		flags = append(flags, flagProlificCreator)
	case r.CreatorHistory.TokenCount >= 10:
		penalty += 8
		flags = append(flags, flagProlificCreator)
	case r.CreatorHistory.TokenCount >= 5:
		penalty += 4
		flags = append(flags, flagModerateTokenCount)
	}

	if r.CreatorHistory.RuggedTokens >= 3 {
		penalty += 15
		flags = append(flags, flagRecentRugHistory)
	}

	return domain.CheckResult{Penalty: clampPenalty(penalty, cap), MaxScore: cap, Flags: flags}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

package scoring

import "strings"

// impersonatedNames are well-known token names/symbols scammers commonly
// rebrand as, to borrow their recognizability.
var impersonatedNames = map[string]bool{
	"bitcoin": true, "ethereum": true, "solana": true, "usdc": true,
	"usdt": true, "bonk": true, "wif": true, "jupiter": true,
	"raydium": true, "pepe": true, "trump": true,
}

// looksLikeImpersonation reports whether name or symbol matches a known
// impersonation target, case-insensitively.
func looksLikeImpersonation(name, symbol string) bool {
	return impersonatedNames[strings.ToLower(name)] || impersonatedNames[strings.ToLower(symbol)]
}

// Flag text is sentence case for check-level signals (matched by substring
// elsewhere when composite risks need to know a check fired) and loud/emoji
// for composite-risk and headline flags, matching how the concrete
// end-to-end scenarios describe them.
const (
	flagWashTradingPattern   = "Wash trading pattern detected"
	flagRapidRepeatedTrading = "Rapid repeated trading detected"

	flagLowHolders            = "Low holders"
	flagModerateHolders       = "Moderate holders"
	flagVeryHighConcentration = "Very high concentration"
	flagHighConcentration     = "High concentration"
	flagMegaWhale             = "Mega whale"
	flagLargeHolder           = "Large holder"

	flagHighDevHoldings     = "High dev holdings"
	flagElevatedDevHoldings = "Elevated dev holdings"
	flagModerateDevHoldings = "Moderate dev holdings"

	flagLowUniqueTraderRatio      = "Low unique trader ratio"
	flagModerateUniqueTraderRatio = "Moderate unique trader ratio"
	flagMicroBuyPattern           = "Micro-buy pattern"

	flagAirdropDumpScheme      = "Airdrop dump scheme"
	flagPossibleAirdropFarming = "Possible airdrop farming"

	flagNoSocialLinks      = "No social links"
	flagNoTwitter          = "No twitter"
	flagNoWebsite          = "No website"
	flagGenericDescription = "Generic description"
	flagImpersonationRisk  = "Impersonation risk"

	flagVeryYoungToken  = "Very young token"
	flagYoungToken      = "Young token"
	flagRecentToken     = "Recent token"
	flagTokenAgeOver24h = "Token age > 24 hours"
	flagTokenMature72h  = "Token age > 72 hours"

	flagDumpInProgress      = "Dump in progress"
	flagHighBuyPressure     = "High buy pressure"
	flagModerateBuyPressure = "Moderate buy pressure"
	flagVolumeSpike         = "Volume spike"
	flagPriceVolatility5m   = "5m price volatility"
	flagPriceVolatility1h   = "1h price volatility"
	flagBalancedTrading     = "Balanced trading activity"

	flagDangerouslyLowLiquidity   = "Dangerously low liquidity"
	flagLowLiquidity              = "Low liquidity ratio"
	flagModerateLiquidity         = "Moderate liquidity ratio"
	flagHealthyLiquidityRatio     = "Healthy liquidity ratio"
	flagHighVolumeToLiquidity     = "High volume to liquidity ratio"
	flagModerateVolumeToLiquidity = "Moderate volume to liquidity ratio"
	flagLowAbsoluteLiquidity      = "Very low absolute liquidity"
	flagModerateAbsoluteLiquidity = "Low absolute liquidity"

	flagSecurityDataUnavailable = "Security data unavailable"
	flagMintNotRevoked          = "Mint not revoked"
	flagFreezeNotRevoked        = "Freeze not revoked"
	flagLPNotLocked             = "LP not locked"
	flagLPLockLow               = "LP lock percentage low"
	flagHoneypotRisk            = "Honeypot risk"
	flagRugpullRisk             = "Rugpull risk"

	flagBundledLaunch          = "Bundled launch"
	flagModerateBundledBuys    = "Moderate bundled buys"
	flagHeavySniperActivity    = "Heavy sniper activity"
	flagModerateSniperActivity = "Moderate sniper activity"
	flagLargeFirstBuy          = "Large first buy"
	flagModerateFirstBuy       = "Moderate first buy"
	flagCreatorBoughtBack      = "Creator bought back"

	flagWalletClustering         = "Wallet clustering detected"
	flagModerateWalletClustering = "Moderate wallet clustering"
	flagMinorWalletClustering    = "Minor wallet clustering"
	flagFreshWalletSurge         = "Fresh wallet surge"
	flagModerateFreshWallets    = "Moderate fresh wallets"
	flagSuspiciousFundingPattern = "Suspicious funding pattern"

	flagHighTradeVelocity     = "High trade velocity"
	flagModerateTradeVelocity = "Moderate trade velocity"
	flagElevatedTradeVelocity = "Elevated trade velocity"

	flagSerialScammer      = "🚨 SERIAL SCAMMER"
	flagRecentRugHistory   = "Recent rug history"
	flagModerateTokenCount = "Moderate token count"
	flagProlificCreator    = "Prolific creator"

	// Composite-risk flags, emitted verbatim (the scenarios match these).
	flagRugInProgress        = "🚨 RUG IN PROGRESS"
	flagPumpSetup            = "⚠️ PUMP SETUP"
	flagWashTradingComposite = "🔄 WASH TRADING"
	flagCoordinatedDump      = "📉 COORDINATED DUMP"
	flagInsiderAccumulation  = "🕵️ INSIDER ACCUMULATION"

	flagStrongHolderBase        = "Strong holder base"
	flagModerateHolderBase      = "Moderate holder base"
	flagFullySecuredContract    = "Fully secured contract"
	flagSocialPresenceConfirmed = "Complete social presence"
)

// Package orchestrator implements the Enrichment Orchestrator: it turns a
// raw MigrationEvent into a scored TokenRecord by fanning out to every
// provider, fusing their fail-soft results, and handing the result to the
// Scoring Engine. No step raises; a provider that comes back empty just
// leaves its slice of the record at its sentinel value.
package orchestrator

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"migration-scorer/internal/domain"
	"migration-scorer/internal/observability"
	"migration-scorer/internal/providers"
	"migration-scorer/internal/scoring"
	"migration-scorer/pkg/logger"
)

const (
	fastModeDeadline = 6 * time.Second
	fullModeDeadline = 10 * time.Second

	bundledBuyWindow = 2 * time.Second
	sniperWindow     = 30 * time.Second
	freshWalletAge   = 24 * time.Hour
)

// Orchestrator fuses provider results into a scored TokenRecord.
type Orchestrator struct {
	pairs     *providers.PairIndex
	holders   *providers.HolderRegistry
	swaps     *providers.Swaps
	chain     *providers.ChainRPC
	scoreCfg  scoring.Config
	log       *logger.Logger
}

// New builds an Orchestrator. Any provider may be nil; a nil provider is
// treated the same as one whose calls all return sentinel values.
func New(pairs *providers.PairIndex, holders *providers.HolderRegistry, swaps *providers.Swaps, chain *providers.ChainRPC, scoreCfg scoring.Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{pairs: pairs, holders: holders, swaps: swaps, chain: chain, scoreCfg: scoreCfg, log: log.With("orchestrator")}
}

// Enrich runs the full fetch-fuse-score sequence for one migration event and
// returns a scored TokenRecord. It never returns an error: every failure
// mode is absorbed into a sentinel field and reflected, at worst, in a
// downgraded dangerScore.confidence.
func (o *Orchestrator) Enrich(ctx context.Context, event domain.MigrationEvent, mode domain.Mode) domain.TokenRecord {
	deadline := fastModeDeadline
	if mode == domain.ModeFull {
		deadline = fullModeDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()

	r := domain.TokenRecord{
		Address:            event.Mint,
		Statistics:         domain.Statistics{HolderCount: domain.UnknownHolderCount},
		MigrationTimestamp: event.Timestamp,
	}
	r.Metadata.Name = event.Name
	r.Metadata.Symbol = event.Symbol
	r.Metadata.Image = event.URI

	creator := o.resolveCreator(ctx, event)
	r.Metadata.Creator = creator

	var (
		pairs      []providers.Pair
		holderStat providers.HolderStats
		topHolders []providers.Holder
		swapList   []providers.Swap
		mintInfo   providers.MintInfo
		haveMint   bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if o.pairs != nil {
			pairs = o.pairs.GetPairs(gctx, event.Mint)
		}
		return nil
	})
	g.Go(func() error {
		if o.holders != nil {
			holderStat = o.holders.GetHolderStats(gctx, event.Mint)
			topHolders = o.holders.GetTopHolders(gctx, event.Mint, 20)
		}
		return nil
	})
	g.Go(func() error {
		if o.swaps != nil {
			since := event.Timestamp
			swapList = o.swaps.GetRecentSwaps(gctx, event.Mint, since, 100, 5)
		}
		return nil
	})
	g.Go(func() error {
		if o.chain != nil {
			mintInfo, haveMint = o.chain.GetMintInfo(gctx, event.Mint)
			if !haveMint {
				// A probe that ran but failed is read as both authorities revoked.
				mintInfo, haveMint = providers.MintInfo{}, true
			}
		}
		return nil
	})
	_ = g.Wait() // each goroutine is already fail-soft; Wait only orders completion

	fusePriceData(&r, event, pairs, swapList)
	fuseStatistics(&r, holderStat, topHolders, swapList)
	if r.Statistics.Top10Concentration == 0 {
		fuseOnChainConcentration(ctx, &r, o.chain, event.Mint)
	}
	fuseSecurity(&r, mintInfo, haveMint, topHolders)

	if mode == domain.ModeFull {
		fuseLaunchAnalysis(&r, swapList, event)
		fuseWalletFunding(&r, topHolders, o.chain, ctx)
	}

	fuseCreatorHistory(&r, creator, o.chain, ctx)

	r.AnalyzedAt = time.Now().UnixMilli()
	if r.AnalyzedAt <= r.MigrationTimestamp {
		r.AnalyzedAt = r.MigrationTimestamp + 1
	}

	r.Analysis = scoring.Score(r, o.scoreCfg)

	elapsed := time.Since(start)
	observability.RecordEnrichment(string(mode), elapsed.Seconds(), elapsed >= deadline)
	if elapsed >= deadline {
		o.log.Warn("enrichment deadline exceeded", logger.String("mint", event.Mint), logger.String("mode", string(mode)))
	}

	return r
}

func (o *Orchestrator) resolveCreator(ctx context.Context, event domain.MigrationEvent) string {
	if event.Creator != "" {
		return event.Creator
	}
	if o.chain == nil {
		return ""
	}
	if asset, ok := o.chain.GetAsset(ctx, event.Mint); ok {
		return asset.Creator
	}
	return ""
}

// fusePriceData applies the field-precedence rule: per-pair data (when any
// pair exists) wins over the raw migration event, and pair-sum volume wins
// over swap-sum volume whenever it is positive.
func fusePriceData(r *domain.TokenRecord, event domain.MigrationEvent, pairs []providers.Pair, swaps []providers.Swap) {
	r.PriceData.MarketCap = event.MarketCap
	r.PriceData.MarketCapConfidence = domain.ConfidenceLow
	if event.HasMarketCap {
		r.PriceData.MarketCapConfidence = domain.ConfidenceMedium
	}
	r.PriceData.Liquidity = event.Liquidity

	var pairVolume float64
	if len(pairs) > 0 {
		best := pairs[0]
		for _, p := range pairs[1:] {
			if p.LiquidityUsd > best.LiquidityUsd {
				best = p
			}
		}
		r.PriceData.Price = best.UsdPrice
		r.PriceData.Liquidity = best.LiquidityUsd
		r.PriceData.PriceChange24h = best.UsdPrice24hrPercentChange
		r.PriceData.MarketCapConfidence = domain.ConfidenceHigh
		for _, p := range pairs {
			pairVolume += p.Volume24hrUsd
		}
	}

	var buys24, sells24, buys1h, sells1h, buys5m, sells5m int
	var swapVolume float64
	now := r.MigrationTimestamp
	for _, s := range swaps {
		age := now - s.Timestamp
		swapVolume += s.ValueUsd
		isBuy := s.Type == "buy"
		if age <= int64(24*time.Hour/time.Millisecond) {
			if isBuy {
				buys24++
			} else {
				sells24++
			}
		}
		if age <= int64(time.Hour/time.Millisecond) {
			if isBuy {
				buys1h++
			} else {
				sells1h++
			}
		}
		if age <= int64(5*time.Minute/time.Millisecond) {
			if isBuy {
				buys5m++
			} else {
				sells5m++
			}
		}
	}
	r.PriceData.Buys24h, r.PriceData.Sells24h = buys24, sells24
	r.PriceData.Buys1h, r.PriceData.Sells1h = buys1h, sells1h
	r.PriceData.Buys5m, r.PriceData.Sells5m = buys5m, sells5m
	r.PriceData.Trades24h = buys24 + sells24

	if pairVolume > 0 {
		r.PriceData.Volume24h = pairVolume
	} else {
		r.PriceData.Volume24h = swapVolume
	}

	if r.PriceData.MarketCap > 0 {
		r.Statistics.LiquidityRatio = r.PriceData.Liquidity / r.PriceData.MarketCap
		if r.PriceData.Liquidity > 0 {
			r.Statistics.VolumeToLiquidityRatio = r.PriceData.Volume24h / r.PriceData.Liquidity
		}
	}
	if len(pairs) > 0 {
		r.PriceData.PairCreatedAt = r.MigrationTimestamp
	}
}

func fuseStatistics(r *domain.TokenRecord, hs providers.HolderStats, holders []providers.Holder, swaps []providers.Swap) {
	if hs.TotalHolders > 0 {
		r.Statistics.HolderCount = hs.TotalHolders
	}
	r.Statistics.DevHoldings = hs.DevHoldingsPercent
	r.Statistics.Top10Concentration = hs.Top10Percent

	if len(holders) > 0 {
		largest := holders[0].PercentageOfSupply
		for _, h := range holders[1:] {
			if h.PercentageOfSupply > largest {
				largest = h.PercentageOfSupply
			}
		}
		r.Statistics.LargestHolderPercentage = largest
	}

	uniq := make(map[string]struct{}, len(swaps))
	for _, s := range swaps {
		if s.Wallet != "" {
			uniq[s.Wallet] = struct{}{}
		}
	}
	r.Statistics.UniqueTraders = len(uniq)
}

// fuseOnChainConcentration is a fallback path for when the Holder Registry
// has no opinion on top10 concentration (e.g. it is unconfigured or the
// token is too new for it to have indexed). It sums the largest on-chain
// token accounts against total supply directly via ChainRPC. Amounts are
// summed as decimal.Decimal rather than float64: supply and per-account
// balances can both run into the tens of billions of raw units, and a
// concentration ratio computed from two large floats that are each already
// lossy compounds the error in exactly the number the Scoring Engine reads
// as a hard threshold.
func fuseOnChainConcentration(ctx context.Context, r *domain.TokenRecord, chain *providers.ChainRPC, mint string) {
	if chain == nil {
		return
	}

	supply := chain.GetTokenSupply(ctx, mint)
	if supply <= 0 {
		return
	}

	accounts := chain.GetLargestTokenAccounts(ctx, mint)
	if len(accounts) == 0 {
		return
	}

	totalSupply := decimal.NewFromFloat(supply)
	sum := decimal.Zero
	largest := decimal.Zero
	limit := len(accounts)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		amt := decimal.NewFromFloat(accounts[i].UIAmount)
		sum = sum.Add(amt)
		if amt.GreaterThan(largest) {
			largest = amt
		}
	}

	top10Ratio, _ := sum.Div(totalSupply).Float64()
	r.Statistics.Top10Concentration = top10Ratio

	if r.Statistics.LargestHolderPercentage == 0 {
		largestRatio, _ := largest.Div(totalSupply).Float64()
		r.Statistics.LargestHolderPercentage = largestRatio
	}
}

func fuseSecurity(r *domain.TokenRecord, mi providers.MintInfo, haveMint bool, holders []providers.Holder) {
	if !haveMint {
		return
	}
	r.Security.Present = true
	r.Security.MintAuthorityRevoked = mi.MintAuthority == ""
	r.Security.FreezeAuthorityRevoked = mi.FreezeAuthority == ""

	contractHolders := 0
	for _, h := range holders {
		if h.Label == "contract" || h.Label == "lp" {
			contractHolders++
		}
	}
	r.Security.TopHoldersAreContracts = len(holders) > 0 && contractHolders == len(holders)

	for _, h := range holders {
		if h.Label == "lp" {
			r.Security.LPLocked = true
			r.Security.LPLockPercentage = h.PercentageOfSupply
			break
		}
	}
	r.Security.IsRugpullRisk = r.Security.Present && !r.Security.MintAuthorityRevoked && !r.Security.LPLocked
}

func fuseLaunchAnalysis(r *domain.TokenRecord, swaps []providers.Swap, event domain.MigrationEvent) {
	if len(swaps) == 0 {
		return
	}
	var bundled, snipers int
	var firstBuy providers.Swap
	haveFirstBuy := false
	var firstBuySum float64
	var firstBuyCount int

	for _, s := range swaps {
		if s.Type != "buy" {
			continue
		}
		age := s.Timestamp - event.Timestamp
		if age >= 0 && age <= int64(bundledBuyWindow/time.Millisecond) {
			bundled++
		}
		if age >= 0 && age <= int64(sniperWindow/time.Millisecond) {
			snipers++
			firstBuySum += s.ValueUsd
			firstBuyCount++
			if !haveFirstBuy || s.Timestamp < firstBuy.Timestamp {
				firstBuy = s
				haveFirstBuy = true
			}
		}
	}

	r.LaunchAnalysis.BundledBuys = bundled
	r.LaunchAnalysis.SniperCount = snipers
	if firstBuyCount > 0 {
		r.LaunchAnalysis.AvgFirstBuySize = firstBuySum / float64(firstBuyCount)
	}
	if r.PriceData.MarketCap > 0 && haveFirstBuy {
		r.LaunchAnalysis.FirstBuyerHoldings = firstBuy.ValueUsd / r.PriceData.MarketCap
	}

	if event.Creator != "" {
		for _, s := range swaps {
			if s.Wallet == event.Creator && s.Type == "buy" && s.Timestamp > event.Timestamp {
				r.LaunchAnalysis.CreatorBoughtBack = true
				break
			}
		}
	}
}

// infrastructureLabels are holder labels that identify LP vaults and program
// accounts rather than funded wallets; they never count toward wallet-funding
// analysis.
var infrastructureLabels = map[string]bool{"lp": true, "contract": true, "program": true}

// walletProbe is one non-infrastructure top holder's funding result.
type walletProbe struct {
	holder      string
	firstSeenAt int64
	fundedFrom  []string
}

// fuseWalletFunding probes up to 10 non-infrastructure top holders in
// parallel batches of 5, fetching each wallet's last 20 transactions to find
// who funded it (incoming SOL transfers > 0.01 SOL) and how recently it was
// first seen.
func fuseWalletFunding(r *domain.TokenRecord, holders []providers.Holder, chain *providers.ChainRPC, ctx context.Context) {
	if chain == nil || len(holders) == 0 {
		return
	}

	var candidates []providers.Holder
	for _, h := range holders {
		if infrastructureLabels[h.Label] {
			continue
		}
		candidates = append(candidates, h)
		if len(candidates) == 10 {
			break
		}
	}
	if len(candidates) == 0 {
		return
	}

	results := make([]walletProbe, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for i, h := range candidates {
		i, h := i, h
		g.Go(func() error {
			if _, ok := chain.GetAccountInfo(gctx, h.Owner); !ok {
				return nil
			}
			history := chain.GetTransactionHistory(gctx, h.Owner, 20, "")
			if len(history) == 0 {
				return nil
			}
			p := walletProbe{holder: h.Owner, firstSeenAt: history[0].Timestamp}
			for _, tx := range history {
				if tx.Timestamp < p.firstSeenAt {
					p.firstSeenAt = tx.Timestamp
				}
				for _, nt := range tx.NativeTransfers {
					if nt.ToUserAccount == h.Owner && nt.AmountSol > 0.01 {
						p.fundedFrom = append(p.fundedFrom, nt.FromUserAccount)
					}
				}
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	fundingSources := make(map[string]map[string]struct{})
	fresh, probed := 0, 0
	for _, p := range results {
		if p.holder == "" {
			continue
		}
		probed++
		if time.Since(time.UnixMilli(p.firstSeenAt)) < freshWalletAge {
			fresh++
		}
		for _, src := range p.fundedFrom {
			if fundingSources[src] == nil {
				fundingSources[src] = make(map[string]struct{})
			}
			fundingSources[src][p.holder] = struct{}{}
		}
	}

	commonSource, commonCount := "", 0
	for src, funded := range fundingSources {
		if len(funded) > commonCount {
			commonSource, commonCount = src, len(funded)
		}
	}

	r.WalletFunding.FreshWalletBuyers = fresh
	r.WalletFunding.CommonFundingSource = commonSource
	r.WalletFunding.ClusteredWallets = commonCount
	r.WalletFunding.SuspiciousFundingPattern = commonCount >= 3 ||
		(fresh >= 3 && probed > 0 && float64(fresh) >= 0.5*float64(probed))
}

func fuseCreatorHistory(r *domain.TokenRecord, creator string, chain *providers.ChainRPC, ctx context.Context) {
	if chain == nil || creator == "" {
		return
	}
	assets := chain.GetAssetsByCreator(ctx, creator, 50)
	r.CreatorHistory.TokenCount = len(assets)

	cutoff := time.Now().Add(-30 * 24 * time.Hour).UnixMilli()
	for _, a := range assets {
		if a.CreatedAt >= cutoff {
			r.CreatorHistory.RecentTokens = append(r.CreatorHistory.RecentTokens, a.ID)
		}
	}
	r.CreatorHistory.IsSerialCreator = len(r.CreatorHistory.RecentTokens) >= 3
}

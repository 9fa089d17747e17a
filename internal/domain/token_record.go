package domain

// MarketCapConfidence reflects how the marketCap field was derived.
type MarketCapConfidence string

const (
	ConfidenceHigh   MarketCapConfidence = "high"
	ConfidenceMedium MarketCapConfidence = "medium"
	ConfidenceLow    MarketCapConfidence = "low"
)

// UnknownHolderCount is the sentinel for "holder count unavailable"; it MUST
// NOT trigger any holder-count threshold in the Scoring Engine.
const UnknownHolderCount = -1

// Metadata is the descriptive identity of a token.
type Metadata struct {
	Name        string
	Symbol      string
	Image       string
	Creator     string
	Decimals    int
	Supply      string // decimal string, arbitrary precision
	Description string
	Twitter     string // empty means absent
	Telegram    string
	Website     string
}

// PriceData holds market data fused from the PairIndex and Swaps providers.
type PriceData struct {
	Price               float64
	MarketCap           float64
	MarketCapConfidence MarketCapConfidence
	Liquidity           float64
	Volume24h           float64
	Trades24h           int
	Buys24h             int
	Sells24h            int
	Buys1h              int
	Sells1h             int
	Buys5m              int
	Sells5m             int
	PriceChange24h      float64
	PriceChange1h       float64
	PriceChange5m       float64
	PairCreatedAt       int64 // ms since epoch, 0 if unknown
}

// Statistics is derived holder/trading concentration data.
type Statistics struct {
	HolderCount             int // UnknownHolderCount (-1) if unavailable
	UniqueTraders           int
	Top10Concentration      float64 // [0,1]
	LargestHolderPercentage float64 // [0,1], largest single holder (LP accounts included)
	DevHoldings             float64 // [0,1]
	LiquidityRatio          float64
	VolumeToLiquidityRatio  float64
}

// Security captures on-chain authority and lock posture.
type Security struct {
	Present                 bool // false iff the probe never ran (sentinel record)
	MintAuthorityRevoked    bool
	FreezeAuthorityRevoked  bool
	LPLocked                bool
	LPLockPercentage        float64
	LPLockDuration          float64 // seconds; math.Inf(1) means "locked forever"
	TopHoldersAreContracts  bool
	IsRugpullRisk           bool
}

// LaunchAnalysis is computed only in full enrichment mode.
type LaunchAnalysis struct {
	BundledBuys        int
	SniperCount        int
	FirstBuyerHoldings float64
	AvgFirstBuySize    float64 // SOL
	CreatorBoughtBack  bool
}

// WalletFunding captures clustering signals among top-holder wallets.
type WalletFunding struct {
	ClusteredWallets         int
	CommonFundingSource      string // empty if none identified
	FreshWalletBuyers        int
	SuspiciousFundingPattern bool
}

// CreatorHistory summarizes the mint creator's track record.
type CreatorHistory struct {
	TokenCount       int
	RecentTokens     []string // mints created in the last 30 days
	IsSerialCreator  bool
	RuggedTokens     int
	SuccessfulTokens int
}

// TokenRecord is the fused result of enrichment for one migration event. It
// is owned by the Token Monitor, created by the Enrichment Orchestrator, and
// never mutated once inserted into history.
type TokenRecord struct {
	Address            string
	Metadata           Metadata
	PriceData          PriceData
	Statistics         Statistics
	Security           Security
	LaunchAnalysis     LaunchAnalysis
	WalletFunding      WalletFunding
	CreatorHistory     CreatorHistory
	Analysis           AnalysisResult
	MigrationTimestamp int64 // ms since epoch
	AnalyzedAt         int64 // ms since epoch
}

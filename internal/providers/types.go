package providers

// GraduatedToken is one entry from GraduatedTokenIndex.list.
type GraduatedToken struct {
	Mint                   string
	Name                   string
	Symbol                 string
	Logo                   string
	PriceUsd               float64
	Liquidity              float64
	FullyDilutedValuation  float64
	GraduatedAt            int64
	PairAddress            string
}

// Pair is one trading venue for a mint, from PairIndex.getPairs.
type Pair struct {
	PairAddress               string
	Exchange                  string
	LiquidityUsd              float64
	UsdPrice                  float64
	Volume24hrUsd             float64
	UsdPrice24hrPercentChange float64
}

// HolderStats is the aggregate response from HolderRegistry.getHolderStats.
// Zero value means "unknown": TotalHolders defaults to the domain sentinel
// UnknownHolderCount by the caller, not here, to keep this struct a plain
// decode target.
type HolderStats struct {
	TotalHolders       int
	DevHoldingsPercent float64
	Top10Percent       float64
}

// Holder is one entry from HolderRegistry.getTopHolders.
type Holder struct {
	Owner             string
	PercentageOfSupply float64
	Label             string
}

// Swap is one trade from Swaps.getRecentSwaps.
type Swap struct {
	Type      string // "buy" | "sell"
	ValueUsd  float64
	Wallet    string
	Timestamp int64 // ms since epoch
}

// MintInfo is the result of ChainRPC.getMintInfo.
type MintInfo struct {
	Decimals       int
	MintAuthority  string // empty means revoked/none
	FreezeAuthority string // empty means revoked/none
}

// TokenAccountAmount is one entry from ChainRPC.getLargestTokenAccounts,
// ordered largest first.
type TokenAccountAmount struct {
	TokenAccount string
	UIAmount     float64
}

// AccountInfo is the result of ChainRPC.getAccountInfo.
type AccountInfo struct {
	Executable bool
	Owner      string
}

// NativeTransfer is a SOL transfer embedded in a transaction.
type NativeTransfer struct {
	FromUserAccount string
	ToUserAccount   string
	AmountSol       float64
}

// TokenTransfer is an SPL token transfer embedded in a transaction.
type TokenTransfer struct {
	FromUserAccount string
	ToUserAccount   string
	Mint            string
	TokenAmount     float64
}

// TxRecord is one entry from ChainRPC.getTransactionHistory.
type TxRecord struct {
	Slot            int64
	Timestamp       int64 // ms since epoch
	FeePayer        string
	NativeTransfers []NativeTransfer
	TokenTransfers  []TokenTransfer
	Type            string
}

// Asset is one entry from ChainRPC.getAssetsByCreator / getAsset.
type Asset struct {
	ID        string
	CreatedAt int64 // ms since epoch
	Interface string
	Supply    float64
	Creator   string
}

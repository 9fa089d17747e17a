package domain

// MigrationEvent is the raw signal that a token has graduated from the
// bonding curve to an AMM pool. It is produced by the Migration Source (or
// synthesized from a backfill listing or a manual analyze request) and is
// immutable and ephemeral: consumed once by the Enrichment Orchestrator and
// then discarded.
type MigrationEvent struct {
	Mint        string  // base-58 token identifier, 32-44 chars, required
	Signature   string  // transaction identifier, empty for backfill events, "manual" for manual analyze requests
	Name        string  // optional, may be empty
	Symbol      string  // optional, may be empty
	URI         string  // optional metadata/image URL
	Pool        string  // AMM pool identifier
	Timestamp   int64   // ms since epoch
	MarketCap   float64 // USD, 0 if unset
	HasMarketCap bool   // true iff MarketCap was supplied (zero is a valid value from some sources)
	Liquidity   float64 // USD
	Creator     string  // wallet identifier, may be empty (resolved later by the orchestrator)
}

// Mode selects how thoroughly the Enrichment Orchestrator analyzes an event.
type Mode string

const (
	ModeFast Mode = "fast" // backfill: bounded per-token timeout, skips launch analysis
	ModeFull Mode = "full" // live/manual: full signal set, no extra per-token timeout
)

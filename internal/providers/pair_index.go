package providers

import (
	"context"
	"fmt"
	"time"
)

// PairIndex resolves the trading pairs for a mint.
type PairIndex struct {
	*baseClient
}

// NewPairIndex constructs a client against baseURL.
func NewPairIndex(baseURL string, keys []string, opts ...ClientOption) *PairIndex {
	return &PairIndex{baseClient: newBaseClient("pair_index", baseURL, keys, opts...)}
}

type pairDTO struct {
	PairAddress               string  `json:"pairAddress"`
	Exchange                  string  `json:"exchange"`
	LiquidityUsd              float64 `json:"liquidityUsd"`
	UsdPrice                  float64 `json:"usdPrice"`
	Volume24hrUsd             float64 `json:"volume24hrUsd"`
	UsdPrice24hrPercentChange float64 `json:"usdPrice24hrPercentChange"`
}

// GetPairs returns the known trading pairs for mint, cached for 30s. Returns
// nil on any failure.
func (p *PairIndex) GetPairs(ctx context.Context, mint string) []Pair {
	if cached, ok := p.cache.get(mint); ok {
		return cached.([]Pair)
	}

	ctx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()

	var dtos []pairDTO
	path := fmt.Sprintf("/pairs/%s", mint)
	if err := p.getJSON(ctx, path, authHeader, &dtos); err != nil {
		return nil
	}

	out := make([]Pair, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, Pair{
			PairAddress:               d.PairAddress,
			Exchange:                  d.Exchange,
			LiquidityUsd:              d.LiquidityUsd,
			UsdPrice:                  d.UsdPrice,
			Volume24hrUsd:             d.Volume24hrUsd,
			UsdPrice24hrPercentChange: d.UsdPrice24hrPercentChange,
		})
	}

	p.cache.set(mint, out, 30*time.Second)
	return out
}

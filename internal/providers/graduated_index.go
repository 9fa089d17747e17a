package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// GraduatedTokenIndex lists recently graduated tokens, newest first.
type GraduatedTokenIndex struct {
	*baseClient
}

// NewGraduatedTokenIndex constructs a client against baseURL, rotating
// through keys on 401/429.
func NewGraduatedTokenIndex(baseURL string, keys []string, opts ...ClientOption) *GraduatedTokenIndex {
	return &GraduatedTokenIndex{baseClient: newBaseClient("graduated_token_index", baseURL, keys, opts...)}
}

type graduatedTokenDTO struct {
	Mint                  string  `json:"mint"`
	Name                  string  `json:"name"`
	Symbol                string  `json:"symbol"`
	Logo                  string  `json:"logo"`
	PriceUsd              float64 `json:"priceUsd"`
	Liquidity             float64 `json:"liquidity"`
	FullyDilutedValuation float64 `json:"fdv"`
	GraduatedAt           int64   `json:"graduatedAt"`
	PairAddress           string  `json:"pairAddress"`
}

// List returns up to limit recently graduated tokens, newest first. On any
// failure (timeout, exhausted keys, malformed payload) it returns an empty
// slice rather than an error.
func (g *GraduatedTokenIndex) List(ctx context.Context, limit int) []GraduatedToken {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	var dtos []graduatedTokenDTO
	path := fmt.Sprintf("/tokens/graduated?limit=%d", limit)
	if err := g.getJSON(ctx, path, authHeader, &dtos); err != nil {
		return nil
	}

	out := make([]GraduatedToken, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, GraduatedToken{
			Mint:                  d.Mint,
			Name:                  d.Name,
			Symbol:                d.Symbol,
			Logo:                  d.Logo,
			PriceUsd:              d.PriceUsd,
			Liquidity:             d.Liquidity,
			FullyDilutedValuation: d.FullyDilutedValuation,
			GraduatedAt:           d.GraduatedAt,
			PairAddress:           d.PairAddress,
		})
	}
	return out
}

func authHeader(req *http.Request, key string) {
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

package providers

import (
	"context"
	"fmt"
	"time"
)

// Swaps fetches recent swap history for a mint, used to derive trade
// volume, buy/sell ratios, and unique-trader counts when PairIndex doesn't
// supply them directly.
type Swaps struct {
	*baseClient
}

// NewSwaps constructs a client against baseURL.
func NewSwaps(baseURL string, keys []string, opts ...ClientOption) *Swaps {
	return &Swaps{baseClient: newBaseClient("swaps", baseURL, keys, opts...)}
}

type swapDTO struct {
	Type      string  `json:"type"`
	ValueUsd  float64 `json:"valueUsd"`
	Wallet    string  `json:"wallet"`
	Timestamp int64   `json:"timestamp"`
}

type swapsPageDTO struct {
	Swaps      []swapDTO `json:"swaps"`
	NextCursor string    `json:"nextCursor"`
}

// GetRecentSwaps walks up to maxPages pages of pageLimit swaps each, for
// trades with timestamp >= since. Returns nil on any failure; a partial
// result accumulated before a mid-pagination failure is still returned.
func (s *Swaps) GetRecentSwaps(ctx context.Context, mint string, since int64, pageLimit, maxPages int) []Swap {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var out []Swap
	cursor := ""
	for page := 0; page < maxPages; page++ {
		path := fmt.Sprintf("/swaps/%s?since=%d&limit=%d", mint, since, pageLimit)
		if cursor != "" {
			path += "&cursor=" + cursor
		}

		var dto swapsPageDTO
		if err := s.getJSON(ctx, path, authHeader, &dto); err != nil {
			return out
		}

		for _, d := range dto.Swaps {
			out = append(out, Swap{Type: d.Type, ValueUsd: d.ValueUsd, Wallet: d.Wallet, Timestamp: d.Timestamp})
		}

		if dto.NextCursor == "" || len(dto.Swaps) == 0 {
			break
		}
		cursor = dto.NextCursor
	}
	return out
}

package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HolderRegistry reports holder concentration for a mint.
type HolderRegistry struct {
	*baseClient
}

// NewHolderRegistry constructs a client against baseURL.
func NewHolderRegistry(baseURL string, keys []string, opts ...ClientOption) *HolderRegistry {
	return &HolderRegistry{baseClient: newBaseClient("holder_registry", baseURL, keys, opts...)}
}

type holderStatsDTO struct {
	TotalHolders       int     `json:"totalHolders"`
	DevHoldingsPercent float64 `json:"devHoldingsPercent"`
	Top10Percent       float64 `json:"top10Percent"`
}

// GetHolderStats returns aggregate holder stats for mint, cached for 60s. A
// 404 is a normal "unknown" response and yields the zero value, same as any
// other failure.
func (h *HolderRegistry) GetHolderStats(ctx context.Context, mint string) HolderStats {
	cacheKey := "stats:" + mint
	if cached, ok := h.cache.get(cacheKey); ok {
		return cached.(HolderStats)
	}

	ctx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()

	var dto holderStatsDTO
	path := fmt.Sprintf("/holders/%s/stats", mint)
	if err := h.getJSON(ctx, path, authHeader, &dto); err != nil {
		if !errors.Is(err, errNotFound) {
			return HolderStats{}
		}
		return HolderStats{}
	}

	out := HolderStats{
		TotalHolders:       dto.TotalHolders,
		DevHoldingsPercent: dto.DevHoldingsPercent,
		Top10Percent:       dto.Top10Percent,
	}
	h.cache.set(cacheKey, out, 60*time.Second)
	return out
}

type holderDTO struct {
	Owner              string  `json:"owner"`
	PercentageOfSupply float64 `json:"percentageOfSupply"`
	Label              string  `json:"label"`
}

// GetTopHolders returns up to limit top holders for mint, largest first.
func (h *HolderRegistry) GetTopHolders(ctx context.Context, mint string, limit int) []Holder {
	cacheKey := fmt.Sprintf("top:%s:%d", mint, limit)
	if cached, ok := h.cache.get(cacheKey); ok {
		return cached.([]Holder)
	}

	ctx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()

	var dtos []holderDTO
	path := fmt.Sprintf("/holders/%s/top?limit=%d", mint, limit)
	if err := h.getJSON(ctx, path, authHeader, &dtos); err != nil {
		return nil
	}

	out := make([]Holder, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, Holder{Owner: d.Owner, PercentageOfSupply: d.PercentageOfSupply, Label: d.Label})
	}
	h.cache.set(cacheKey, out, 60*time.Second)
	return out
}

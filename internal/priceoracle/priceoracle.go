// Package priceoracle provides the cached USD price of SOL, tried across
// independent public sources, never fabricated.
package priceoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"migration-scorer/pkg/logger"
)

const cacheTTL = 30 * time.Second

// Source fetches the current SOL price in USD, returning an error if it
// cannot.
type Source func(ctx context.Context) (float64, error)

// Oracle is the SOL/USD price cache. Construct one instance and share it
// explicitly through the call graph rather than reaching for a
// package-level singleton; tests construct fresh instances.
type Oracle struct {
	sources []Source
	log     *logger.Logger

	mu        sync.Mutex
	cached    float64
	cachedAt  time.Time
	hasCached bool
}

// New builds an Oracle that tries sources in order on each cache miss.
func New(log *logger.Logger, sources ...Source) *Oracle {
	if log == nil {
		log = logger.Default()
	}
	if len(sources) == 0 {
		sources = []Source{httpJSONPriceSource("https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd", coingeckoExtract)}
	}
	return &Oracle{sources: sources, log: log}
}

// GetPriceUsd returns the cached SOL price, refreshing it if the cache is
// older than 30s. Returns (0, false) if the cache is stale and every source
// failed; it never returns a stale value past the TTL and never fabricates
// a default.
func (o *Oracle) GetPriceUsd(ctx context.Context) (float64, bool) {
	o.mu.Lock()
	if o.hasCached && time.Since(o.cachedAt) < cacheTTL {
		price := o.cached
		o.mu.Unlock()
		return price, true
	}
	o.mu.Unlock()

	for _, src := range o.sources {
		price, err := src(ctx)
		if err != nil || price <= 0 || !isFinite(price) {
			if err != nil {
				o.log.Warn("sol price source failed", logger.Err(err))
			}
			continue
		}

		o.mu.Lock()
		o.cached = price
		o.cachedAt = time.Now()
		o.hasCached = true
		o.mu.Unlock()
		return price, true
	}

	return 0, false
}

// SolToUsd converts a SOL amount to USD, propagating absence of a price.
func (o *Oracle) SolToUsd(ctx context.Context, sol float64) (float64, bool) {
	price, ok := o.GetPriceUsd(ctx)
	if !ok {
		return 0, false
	}
	return sol * price, true
}

// UsdToSol converts a USD amount to SOL, propagating absence of a price.
func (o *Oracle) UsdToSol(ctx context.Context, usd float64) (float64, bool) {
	price, ok := o.GetPriceUsd(ctx)
	if !ok || price == 0 {
		return 0, false
	}
	return usd / price, true
}

func isFinite(f float64) bool {
	return f == f && f < 1e18 && f > -1e18
}

func httpJSONPriceSource(url string, extract func([]byte) (float64, error)) Source {
	client := &http.Client{Timeout: 4 * time.Second}
	return func(ctx context.Context) (float64, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("price source: status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, err
		}
		return extract(body)
	}
}

func coingeckoExtract(body []byte) (float64, error) {
	var payload struct {
		Solana struct {
			USD float64 `json:"usd"`
		} `json:"solana"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, err
	}
	return payload.Solana.USD, nil
}

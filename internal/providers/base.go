// Package providers contains typed, fail-soft wrappers over the external
// data providers the Enrichment Orchestrator fans out to: a graduated-token
// index, a pair index, a holder registry, a swaps history service, and
// on-chain RPC. Every operation returns a sentinel zero value on any error
// instead of raising — timeouts, auth failures, network errors and
// malformed payloads are all absorbed here so the orchestrator never has to
// distinguish "provider failed" from "provider had nothing to say".
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"migration-scorer/internal/observability"
	"migration-scorer/pkg/logger"
)

// ClientOption configures a baseClient.
type ClientOption func(*baseClient)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(b *baseClient) { b.http = c }
}

// WithLogger attaches a structured logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(b *baseClient) { b.log = l }
}

// WithRateLimit caps outbound requests to this client at rps requests per
// second, with burst allowed to spike briefly above that. Most free-tier
// data providers enforce a per-second cap of their own; this keeps this
// process a well-behaved caller instead of discovering the cap via 429s.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(b *baseClient) { b.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// defaultRateLimit is applied when no WithRateLimit option is given: a
// conservative cap that every provider in this pipeline can sustain without
// tuning.
const defaultRateLimit = 10

// baseClient is embedded by every provider client. It owns key rotation, a
// small TTL cache, a per-client rate limiter, and fail-soft GET semantics
// shared across providers.
type baseClient struct {
	name    string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	mu      sync.Mutex
	keys    []string
	keyIdx  int

	cache *ttlCache
	log   *logger.Logger
}

func newBaseClient(name, baseURL string, keys []string, opts ...ClientOption) *baseClient {
	b := &baseClient{
		name:    name,
		baseURL: baseURL,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit*2),
		keys:    keys,
		cache:   newTTLCache(),
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// currentKey returns the credential currently in use, or "" if none are
// configured (some providers are usable unauthenticated).
func (b *baseClient) currentKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.keys) == 0 {
		return ""
	}
	return b.keys[b.keyIdx]
}

// rotate advances the credential index; it reports whether another
// credential is available to retry with.
func (b *baseClient) rotate() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.keyIdx+1 >= len(b.keys) {
		return false
	}
	b.keyIdx++
	observability.RecordKeyRotation(b.name)
	return true
}

// get performs an HTTP GET against baseURL+path, rotating credentials on
// 401/429 until one succeeds or all are exhausted. setAuth attaches whatever
// credential it is given to the request (header or query param, provider
// specific); it is called once per attempt with the currently selected key.
// Any failure (network, non-2xx, exhausted keys) is reported via err; the
// caller is expected to treat a non-nil err as "absent" and never propagate
// it as a fatal condition.
func (b *baseClient) get(ctx context.Context, path string, setAuth func(req *http.Request, key string)) ([]byte, error) {
	start := time.Now()
	attempts := len(b.keys)
	if attempts == 0 {
		attempts = 1
	}

	requestID := uuid.NewString()

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit wait: %w", b.name, err)
		}

		key := b.currentKey()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", b.name, err)
		}
		req.Header.Set("X-Request-ID", requestID)
		if setAuth != nil {
			setAuth(req, key)
		}

		resp, err := b.http.Do(req)
		if err != nil {
			lastErr = err
			observability.RecordProviderCall(b.name, "error", time.Since(start).Seconds())
			b.log.Warn("provider request failed",
				logger.String("provider", b.name), logger.String("requestId", requestID), logger.Err(err))
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("%s: status %d", b.name, resp.StatusCode)
			observability.RecordProviderCall(b.name, "auth", time.Since(start).Seconds())
			if b.rotate() {
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode == http.StatusNotFound {
			observability.RecordProviderCall(b.name, "not_found", time.Since(start).Seconds())
			return nil, errNotFound
		}

		if resp.StatusCode != http.StatusOK {
			observability.RecordProviderCall(b.name, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("%s: unexpected status %d", b.name, resp.StatusCode)
		}

		if readErr != nil {
			observability.RecordProviderCall(b.name, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("%s: read body: %w", b.name, readErr)
		}

		observability.RecordProviderCall(b.name, "ok", time.Since(start).Seconds())
		return body, nil
	}

	return nil, lastErr
}

// getJSON is get followed by json.Unmarshal into out; a malformed payload is
// logged with a short snippet and reported as an error, never retried.
func (b *baseClient) getJSON(ctx context.Context, path string, setAuth func(req *http.Request, key string), out interface{}) error {
	body, err := b.get(ctx, path, setAuth)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		snippet := body
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		b.log.Warn("malformed provider payload",
			logger.String("provider", b.name),
			logger.String("snippet", string(snippet)),
		)
		return fmt.Errorf("%s: malformed payload: %w", b.name, err)
	}
	return nil
}

// errNotFound marks a 404, which several providers treat as a normal
// "unknown" response rather than a failure.
var errNotFound = fmt.Errorf("not found")

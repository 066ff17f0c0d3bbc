// Package dexscreener fetches market data for SPL tokens from the
// DexScreener public API. The API is best-effort: every method degrades
// to partial or empty results instead of failing a whole dashboard load.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
)

const (
	// DefaultBaseURL is the public DexScreener API root.
	DefaultBaseURL = "https://api.dexscreener.com"

	// batchSize is the maximum number of mints per multi-token request.
	batchSize = 30
)

// Client queries DexScreener for pair data on the Solana chain.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger

	// batchLimiter paces multi-token requests, fallbackLimiter paces the
	// per-mint fallback endpoint which rate-limits more aggressively.
	batchLimiter    *rate.Limiter
	fallbackLimiter *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPacing overrides the request pacing intervals.
func WithPacing(batchInterval, fallbackInterval time.Duration) Option {
	return func(c *Client) {
		c.batchLimiter = rate.NewLimiter(rate.Every(batchInterval), 1)
		c.fallbackLimiter = rate.NewLimiter(rate.Every(fallbackInterval), 1)
	}
}

// NewClient creates a DexScreener client with default pacing.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:         DefaultBaseURL,
		client:          &http.Client{Timeout: 15 * time.Second},
		logger:          log.New(io.Discard, "", 0),
		batchLimiter:    rate.NewLimiter(rate.Every(350*time.Millisecond), 1),
		fallbackLimiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenPairs returns pair data for the given mints. Mints are queried in
// batches; when a batch yields nothing from the multi-token endpoint, each
// mint in it is retried individually against the fallback endpoint.
// Failures skip the affected mints rather than aborting.
func (c *Client) TokenPairs(ctx context.Context, mints []string) ([]domain.MarketEntry, error) {
	if len(mints) == 0 {
		return nil, nil
	}

	var out []domain.MarketEntry
	for i := 0; i < len(mints); i += batchSize {
		end := i + batchSize
		if end > len(mints) {
			end = len(mints)
		}
		batch := mints[i:end]

		if i > 0 {
			if err := c.batchLimiter.Wait(ctx); err != nil {
				return out, err
			}
		}

		pairs, err := c.fetchPairs(ctx, "/tokens/v1/solana/"+strings.Join(batch, ","), "tokens_v1")
		if err == nil && len(pairs) > 0 {
			out = append(out, toMarketEntries(pairs)...)
			continue
		}
		if err != nil {
			c.logger.Printf("[dexscreener] batch of %d failed, falling back per mint: %v", len(batch), err)
		}

		for _, mint := range batch {
			pairs, err := c.fetchPairs(ctx, "/latest/dex/tokens/"+mint, "latest_tokens")
			if err == nil {
				out = append(out, toMarketEntries(pairs)...)
			}
			if err := c.fallbackLimiter.Wait(ctx); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// Pairs returns all pairs for a single mint, trying the v1 endpoint first.
func (c *Client) Pairs(ctx context.Context, mint string) ([]domain.MarketEntry, error) {
	pairs, err := c.fetchPairs(ctx, "/token-pairs/v1/solana/"+mint, "token_pairs_v1")
	if err == nil && len(pairs) > 0 {
		return toMarketEntries(pairs), nil
	}

	pairs, err = c.fetchPairs(ctx, "/latest/dex/tokens/"+mint, "latest_tokens")
	if err != nil {
		return nil, err
	}
	return toMarketEntries(pairs), nil
}

// NativePrice returns the current SOL/USD price from the wrapped-SOL pair
// with the highest ranking. Both endpoints failing yields an error so the
// caller can keep serving its last known quote.
func (c *Client) NativePrice(ctx context.Context) (domain.QuotedPrice, error) {
	for _, path := range []string{
		"/latest/dex/tokens/" + domain.WrappedSOLMint,
		"/tokens/v1/solana/" + domain.WrappedSOLMint,
	} {
		pairs, err := c.fetchPairs(ctx, path, "sol_price")
		if err != nil || len(pairs) == 0 {
			continue
		}
		price := parsePrice(pairs[0].PriceUsd)
		if price <= 0 {
			continue
		}
		return domain.QuotedPrice{Price: price, AsOf: time.Now()}, nil
	}
	return domain.QuotedPrice{}, fmt.Errorf("no SOL price available")
}

// fetchPairs performs a GET and decodes either response shape.
func (c *Client) fetchPairs(ctx context.Context, path, endpoint string) ([]Pair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordDexRequest(endpoint, "error")
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordDexRequest(endpoint, "error")
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		observability.RecordDexRequest(endpoint, fmt.Sprintf("http_%d", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	pairs, err := decodePairs(body)
	if err != nil {
		observability.RecordDexRequest(endpoint, "decode_error")
		return nil, err
	}

	observability.RecordDexRequest(endpoint, "ok")
	return pairs, nil
}

func decodePairs(body []byte) ([]Pair, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var pairs []Pair
		if err := json.Unmarshal(body, &pairs); err != nil {
			return nil, fmt.Errorf("unmarshal pair array: %w", err)
		}
		return pairs, nil
	}

	var env pairsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal pair envelope: %w", err)
	}
	return env.Pairs, nil
}

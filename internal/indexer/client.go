// Package indexer fetches enriched transaction history for a wallet from
// a Helius-style indexer API. History is paginated backwards by signature;
// a failed page ends the walk with whatever was accumulated so the
// dashboard can still render a partial ledger.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
)

const (
	// DefaultBaseURL is the Helius enhanced transactions API root.
	DefaultBaseURL = "https://api.helius.xyz/v0"

	// pageSize is the indexer's fixed page size. A shorter page means the
	// history is exhausted.
	pageSize = 100

	// DefaultSwapPages bounds the swap history walk.
	DefaultSwapPages = 8

	// DefaultTransferPages bounds the transfer history walk. Transfers only
	// annotate the ledger, so the walk is shallower.
	DefaultTransferPages = 4
)

// Client fetches transaction pages from the indexer.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *log.Logger
	limiter *rate.Limiter

	swapPages     int
	transferPages int
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
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

// WithPageLimits overrides the per-kind page caps.
func WithPageLimits(swapPages, transferPages int) Option {
	return func(c *Client) {
		c.swapPages = swapPages
		c.transferPages = transferPages
	}
}

// WithPacing overrides the inter-page pacing interval.
func WithPacing(interval time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewClient creates an indexer client. An empty apiKey disables the client:
// all fetches return empty history.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		client:        &http.Client{Timeout: 30 * time.Second},
		logger:        log.New(io.Discard, "", 0),
		limiter:       rate.NewLimiter(rate.Every(150*time.Millisecond), 1),
		swapPages:     DefaultSwapPages,
		transferPages: DefaultTransferPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client has an API key.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Swaps returns the wallet's swap transactions, newest first.
func (c *Client) Swaps(ctx context.Context, wallet string) ([]domain.SwapTransaction, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var all []domain.SwapTransaction
	err := c.walk(ctx, wallet, "SWAP", c.swapPages, func(page []rawTransaction) {
		for _, raw := range page {
			tx, err := raw.Swap()
			if err != nil {
				c.logger.Printf("[indexer] skipping malformed swap: %v", err)
				continue
			}
			all = append(all, tx)
		}
	})
	return all, err
}

// Transfers returns the wallet's transfer transactions, newest first.
func (c *Client) Transfers(ctx context.Context, wallet string) ([]domain.TransferTransaction, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var all []domain.TransferTransaction
	err := c.walk(ctx, wallet, "TRANSFER", c.transferPages, func(page []rawTransaction) {
		for _, raw := range page {
			tx, err := raw.Transfer()
			if err != nil {
				c.logger.Printf("[indexer] skipping malformed transfer: %v", err)
				continue
			}
			all = append(all, tx)
		}
	})
	return all, err
}

// walk pages backwards through the wallet's history of one transaction
// kind. The cursor is the last signature of the previous page. The walk
// stops on a short page, the page cap, or any error; accumulated pages
// are always kept.
func (c *Client) walk(ctx context.Context, wallet, kind string, maxPages int, accept func([]rawTransaction)) error {
	cursor := ""

	for page := 0; page < maxPages; page++ {
		if page > 0 {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		txns, err := c.fetchPage(ctx, wallet, kind, cursor)
		observability.RecordIndexerPage(kind, err)
		if err != nil {
			c.logger.Printf("[indexer] %s page %d for %s failed: %v", kind, page, wallet, err)
			return nil
		}
		if len(txns) == 0 {
			return nil
		}

		accept(txns)
		cursor = txns[len(txns)-1].Signature

		if len(txns) < pageSize {
			return nil
		}
	}
	return nil
}

// fetchPage requests one page of enriched transactions.
func (c *Client) fetchPage(ctx context.Context, wallet, kind, cursor string) ([]rawTransaction, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("type", kind)
	if cursor != "" {
		q.Set("before", cursor)
	}

	endpoint := fmt.Sprintf("%s/addresses/%s/transactions?%s", c.baseURL, wallet, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var txns []rawTransaction
	if err := json.Unmarshal(body, &txns); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}
	return txns, nil
}

// rawTransaction is one enriched transaction as returned by the indexer,
// before validation into a tagged domain variant.
type rawTransaction struct {
	Signature       string                  `json:"signature"`
	Timestamp       int64                   `json:"timestamp"`
	Type            string                  `json:"type"`
	NativeTransfers []domain.NativeTransfer `json:"nativeTransfers"`
	TokenTransfers  []domain.TokenTransfer  `json:"tokenTransfers"`
}

func (r *rawTransaction) validate() error {
	if r.Signature == "" {
		return fmt.Errorf("missing signature")
	}
	if r.Timestamp <= 0 {
		return fmt.Errorf("missing timestamp on %s", r.Signature)
	}
	return nil
}

// Swap validates the raw transaction as a swap.
func (r *rawTransaction) Swap() (domain.SwapTransaction, error) {
	if err := r.validate(); err != nil {
		return domain.SwapTransaction{}, err
	}
	return domain.SwapTransaction{
		Signature:       r.Signature,
		Timestamp:       r.Timestamp,
		NativeTransfers: r.NativeTransfers,
		TokenTransfers:  r.TokenTransfers,
	}, nil
}

// Transfer validates the raw transaction as a transfer.
func (r *rawTransaction) Transfer() (domain.TransferTransaction, error) {
	if err := r.validate(); err != nil {
		return domain.TransferTransaction{}, err
	}
	return domain.TransferTransaction{
		Signature:      r.Signature,
		Timestamp:      r.Timestamp,
		TokenTransfers: r.TokenTransfers,
	}, nil
}

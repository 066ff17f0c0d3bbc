// Package holdings resolves a wallet's raw token accounts into enriched
// holdings by joining them with DEX market data.
package holdings

import (
	"context"
	"io"
	"log"
	"sort"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
)

// AccountSource lists a wallet's token accounts.
type AccountSource interface {
	AllTokenAccounts(ctx context.Context, address string) ([]domain.TokenAccount, error)
}

// MarketSource provides DEX pair data for mints.
type MarketSource interface {
	TokenPairs(ctx context.Context, mints []string) ([]domain.MarketEntry, error)
}

// Resolver joins on-chain holdings with market data.
type Resolver struct {
	accounts AccountSource
	markets  MarketSource
	logger   *log.Logger
}

// NewResolver creates a Resolver.
func NewResolver(accounts AccountSource, markets MarketSource, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{accounts: accounts, markets: markets, logger: logger}
}

// Refresh rebuilds the wallet's enriched holdings from scratch. Market
// data failures degrade to placeholder entries; only the account listing
// itself can fail the refresh.
func (r *Resolver) Refresh(ctx context.Context, wallet string) ([]domain.EnrichedToken, error) {
	accounts, err := r.accounts.AllTokenAccounts(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}

	mints := make([]string, len(accounts))
	for i, a := range accounts {
		mints[i] = a.Mint
	}

	entries, err := r.markets.TokenPairs(ctx, mints)
	if err != nil {
		r.logger.Printf("[holdings] market data unavailable, serving placeholders: %v", err)
	}

	observability.RecordRefreshSuccess(float64(time.Now().Unix()))
	return Enrich(accounts, entries), nil
}

// RefreshPrices re-fetches market data for already-enriched holdings and
// updates their price fields in place. Tokens without fresh data keep
// their previous values.
func (r *Resolver) RefreshPrices(ctx context.Context, tokens []domain.EnrichedToken) []domain.EnrichedToken {
	if len(tokens) == 0 {
		return tokens
	}

	mints := make([]string, len(tokens))
	for i, t := range tokens {
		mints[i] = t.Mint
	}

	entries, err := r.markets.TokenPairs(ctx, mints)
	if err != nil || len(entries) == 0 {
		return tokens
	}

	out := make([]domain.EnrichedToken, len(tokens))
	for i, t := range tokens {
		best := bestEntry(entries, t.Mint, true)
		if best == nil {
			out[i] = t
			continue
		}
		t.PriceUSD = best.PriceUSD
		t.PriceNative = best.PriceNative
		t.PriceChange24h = best.PriceChange24h
		t.Volume24h = best.Volume24h
		t.MarketCap = best.MarketCap
		if best.ImageURL != "" {
			t.ImageURL = best.ImageURL
		}
		if best.PairAddress != "" {
			t.PairAddress = best.PairAddress
		}
		out[i] = t
	}
	return out
}

// Enrich joins token accounts with their best market entry. Base-side
// pairs are preferred over quote-side ones; ties break by USD liquidity.
// Accounts with no matching pair get a placeholder with zero prices.
func Enrich(accounts []domain.TokenAccount, entries []domain.MarketEntry) []domain.EnrichedToken {
	out := make([]domain.EnrichedToken, len(accounts))
	for i, a := range accounts {
		best := bestEntry(entries, a.Mint, false)
		if best == nil {
			out[i] = domain.EnrichedToken{TokenAccount: a}
			continue
		}

		isBase := best.BaseMint == a.Mint
		t := domain.EnrichedToken{
			TokenAccount:   a,
			PriceChange24h: best.PriceChange24h,
			Volume24h:      best.Volume24h,
			LiquidityUSD:   best.LiquidityUSD,
			MarketCap:      best.MarketCap,
			ImageURL:       best.ImageURL,
			PairURL:        best.PairURL,
			PairAddress:    best.PairAddress,
		}
		if isBase {
			t.Symbol = best.BaseSymbol
			t.Name = best.BaseName
			t.PriceUSD = best.PriceUSD
			t.PriceNative = best.PriceNative
		} else {
			// Quote-side prices describe the base token, not this one.
			t.Symbol = best.QuoteSymbol
			t.Name = best.QuoteName
		}
		out[i] = t
	}
	return out
}

// bestEntry picks the canonical pair for a mint. With baseOnly set, only
// base-side pairs are considered.
func bestEntry(entries []domain.MarketEntry, mint string, baseOnly bool) *domain.MarketEntry {
	var matches []domain.MarketEntry
	for _, e := range entries {
		if e.BaseMint == mint {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 && !baseOnly {
		for _, e := range entries {
			if e.QuoteMint == mint {
				matches = append(matches, e)
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].LiquidityUSD > matches[j].LiquidityUSD
	})
	return &matches[0]
}

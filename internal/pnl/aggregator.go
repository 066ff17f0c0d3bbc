// Package pnl derives realized and unrealized profit figures from a
// cost-basis ledger. All functions are pure aggregation over inputs the
// caller already fetched.
package pnl

import (
	"solana-wallet-pnl/internal/domain"
)

// TotalPnL returns realized plus unrealized PnL for one ledger entry, in
// SOL. With no open position or no usable current price the unrealized
// part is omitted, collapsing to realized-only.
func TotalPnL(entry *domain.CostBasisEntry, token *domain.EnrichedToken) float64 {
	if entry == nil {
		return 0
	}
	realized := entry.Realized()

	remaining := entry.Remaining()
	if remaining <= 0 || token == nil || token.PriceNative <= 0 {
		return realized
	}

	unrealized := remaining*token.PriceNative - remaining*entry.AvgCost()
	return realized + unrealized
}

// BestTrade identifies the standout disposal: the single SELL with the
// highest proceeds, or the best token by total PnL when no sells exist.
type BestTrade struct {
	Mint         string  `json:"mint"`
	Symbol       string  `json:"symbol"`
	NativeAmount float64 `json:"nativeAmount"`
	Signature    string  `json:"signature,omitempty"`
}

// Summary is the wallet-level PnL rollup. NetRealized and
// TotalWithUnrealized are deliberately separate figures: the first sums
// only closed spent/received flows, the second adds open positions marked
// at current prices.
type Summary struct {
	NetRealized         float64    `json:"netRealized"`         // SOL
	TotalWithUnrealized float64    `json:"totalWithUnrealized"` // SOL
	TotalSpent          float64    `json:"totalSpent"`          // SOL
	TotalReceived       float64    `json:"totalReceived"`       // SOL
	TradeCount          int        `json:"tradeCount"`
	TokensTraded        int        `json:"tokensTraded"`
	WinningTokens       int        `json:"winningTokens"`
	WinRate             float64    `json:"winRate"` // percent
	Best                *BestTrade `json:"bestTrade,omitempty"`
}

// Summarize rolls a ledger up into wallet-level figures. A token wins
// when its total PnL, including the unrealized part, is positive.
func Summarize(ledger map[string]*domain.CostBasisEntry, tokens []domain.EnrichedToken) Summary {
	byMint := tokensByMint(tokens)

	var s Summary
	for mint, entry := range ledger {
		token := byMint[mint]

		s.NetRealized += entry.Realized()
		s.TotalWithUnrealized += TotalPnL(entry, token)
		s.TotalSpent += entry.NativeSpent
		s.TotalReceived += entry.NativeReceived
		s.TradeCount += len(entry.Trades)
		s.TokensTraded++

		if TotalPnL(entry, token) > 0 {
			s.WinningTokens++
		}
	}

	if s.TokensTraded > 0 {
		s.WinRate = float64(s.WinningTokens) / float64(s.TokensTraded) * 100
	}

	s.Best = FindBestTrade(ledger, tokens)
	return s
}

// FindBestTrade returns the SELL trade with the highest proceeds across
// the whole ledger. A wallet with no sells falls back to the token with
// the highest total PnL so a purely-unrealized winner still surfaces.
// An empty ledger yields nil.
func FindBestTrade(ledger map[string]*domain.CostBasisEntry, tokens []domain.EnrichedToken) *BestTrade {
	byMint := tokensByMint(tokens)

	var best *BestTrade
	for mint, entry := range ledger {
		for _, t := range entry.Trades {
			if t.Type != domain.TradeSell || t.NativeAmount <= 0 {
				continue
			}
			if best == nil || t.NativeAmount > best.NativeAmount {
				best = &BestTrade{
					Mint:         mint,
					Symbol:       symbolFor(byMint, mint),
					NativeAmount: t.NativeAmount,
					Signature:    t.Signature,
				}
			}
		}
	}
	if best != nil {
		return best
	}

	for mint, entry := range ledger {
		pnl := TotalPnL(entry, byMint[mint])
		if best == nil || pnl > best.NativeAmount {
			best = &BestTrade{
				Mint:         mint,
				Symbol:       symbolFor(byMint, mint),
				NativeAmount: pnl,
			}
		}
	}
	return best
}

func tokensByMint(tokens []domain.EnrichedToken) map[string]*domain.EnrichedToken {
	byMint := make(map[string]*domain.EnrichedToken, len(tokens))
	for i := range tokens {
		byMint[tokens[i].Mint] = &tokens[i]
	}
	return byMint
}

func symbolFor(byMint map[string]*domain.EnrichedToken, mint string) string {
	if t := byMint[mint]; t != nil && t.Symbol != "" {
		return t.Symbol
	}
	return ""
}

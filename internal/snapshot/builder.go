// Package snapshot produces portfolio-level summaries and head-to-head
// wallet comparisons. Pure aggregation, no I/O.
package snapshot

import (
	"solana-wallet-pnl/internal/domain"
)

// Build summarizes a wallet's enriched holdings into a snapshot. The
// native balance is valued at the given USD price; tokens without market
// data contribute zero value but still count as holdings.
func Build(tokens []domain.EnrichedToken, nativeBalance float64, nativePrice domain.QuotedPrice) domain.PortfolioSnapshot {
	var tokenValue, topValue float64
	for i := range tokens {
		v := tokens[i].ValueUSD()
		tokenValue += v
		if v > topValue {
			topValue = v
		}
	}

	s := domain.PortfolioSnapshot{
		NativeBalance: nativeBalance,
		TokenCount:    len(tokens),
		TokenValue:    tokenValue,
		TotalValue:    tokenValue + nativeBalance*nativePrice.Price,
	}
	if tokenValue > 0 {
		s.TopHoldingPct = topValue / tokenValue * 100
	}
	if len(tokens) > 0 {
		s.AvgTokenValue = tokenValue / float64(len(tokens))
	}
	return s
}

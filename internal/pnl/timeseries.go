package pnl

import (
	"sort"

	"solana-wallet-pnl/internal/domain"
)

// BucketInterval is the fixed width of one valuation bucket.
const BucketInterval = 4 * 3600

// BuildTimeSeries replays the ledger's trades into fixed-width buckets
// from start to now and values the evolving holdings at CURRENT prices.
// There is no historical price feed, so the series shows what today's
// prices applied retroactively would yield, not true historical value.
//
// The running native balance is floored at zero: incomplete history can
// replay more buying than the wallet ever held.
func BuildTimeSeries(ledger map[string]*domain.CostBasisEntry, tokens []domain.EnrichedToken, nativeBalance float64, start, now int64) []domain.ValuationPoint {
	byMint := tokensByMint(tokens)

	type stampedTrade struct {
		domain.Trade
		mint string
	}
	var trades []stampedTrade
	for mint, entry := range ledger {
		for _, t := range entry.Trades {
			if t.Timestamp >= start {
				trades = append(trades, stampedTrade{Trade: t, mint: mint})
			}
		}
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})

	var points []domain.ValuationPoint
	runNative := 0.0
	holdings := make(map[string]float64)

	for ts := start; ts <= now; ts += BucketInterval {
		end := ts + BucketInterval
		for _, t := range trades {
			if t.Timestamp < ts || t.Timestamp >= end {
				continue
			}
			switch t.Type {
			case domain.TradeBuy:
				runNative -= t.NativeAmount
				holdings[t.mint] += t.Amount
			case domain.TradeSell:
				runNative += t.NativeAmount
				holdings[t.mint] -= t.Amount
			}
		}

		tokenValue := 0.0
		for mint, bal := range holdings {
			if bal <= 0 {
				continue
			}
			if tok := byMint[mint]; tok != nil {
				tokenValue += bal * tok.PriceNative
			}
		}

		nb := nativeBalance + runNative
		if nb < 0 {
			nb = 0
		}

		points = append(points, domain.ValuationPoint{
			Timestamp:        ts,
			NativeBalance:    nb,
			TokenValueNative: tokenValue,
			TotalNative:      nb + tokenValue,
		})
	}
	return points
}

package snapshot

import (
	"math"

	"solana-wallet-pnl/internal/domain"
)

// WalletStanding is one side of a comparison: a snapshot plus optional
// PnL figures. RealizedPnL and TokensTraded only enter the comparison
// when both sides have them.
type WalletStanding struct {
	Snapshot     domain.PortfolioSnapshot
	RealizedPnL  float64
	TokensTraded int
	HasPnL       bool
}

// Compare runs a metric-by-metric showdown between two wallets. Each
// metric goes to the base wallet only on a strictly greater value (PnL
// compares by magnitude); ties on a metric therefore score for the other
// side. The overall winner is a simple majority count.
func Compare(base, other WalletStanding) domain.ComparisonResult {
	metrics := []domain.ComparisonMetric{
		{Label: "Portfolio Value", Base: base.Snapshot.TotalValue, Other: other.Snapshot.TotalValue},
		{Label: "Native Balance", Base: base.Snapshot.NativeBalance, Other: other.Snapshot.NativeBalance},
		{Label: "Token Count", Base: float64(base.Snapshot.TokenCount), Other: float64(other.Snapshot.TokenCount)},
		{Label: "Token Value", Base: base.Snapshot.TokenValue, Other: other.Snapshot.TokenValue},
		{Label: "Top Holding %", Base: base.Snapshot.TopHoldingPct, Other: other.Snapshot.TopHoldingPct},
		{Label: "Avg Token Value", Base: base.Snapshot.AvgTokenValue, Other: other.Snapshot.AvgTokenValue},
	}
	if base.HasPnL && other.HasPnL {
		metrics = append(metrics,
			domain.ComparisonMetric{Label: "Total PnL", Base: base.RealizedPnL, Other: other.RealizedPnL, ByMagnitude: true},
			domain.ComparisonMetric{Label: "Tokens Traded", Base: float64(base.TokensTraded), Other: float64(other.TokensTraded)},
		)
	}

	result := domain.ComparisonResult{}
	for i := range metrics {
		m := &metrics[i]
		if m.ByMagnitude {
			m.BaseWins = math.Abs(m.Base) > math.Abs(m.Other)
		} else {
			m.BaseWins = m.Base > m.Other
		}
		if m.BaseWins {
			result.BaseWins++
		}
	}
	result.Metrics = metrics
	result.OtherWins = len(metrics) - result.BaseWins

	switch {
	case result.BaseWins > result.OtherWins:
		result.Winner = domain.WinnerBase
	case result.BaseWins < result.OtherWins:
		result.Winner = domain.WinnerOther
	default:
		result.Winner = domain.WinnerTie
	}
	return result
}

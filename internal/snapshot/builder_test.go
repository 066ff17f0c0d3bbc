package snapshot

import (
	"math"
	"testing"
	"time"

	"solana-wallet-pnl/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func holding(mint string, balance, priceUsd float64) domain.EnrichedToken {
	return domain.EnrichedToken{
		TokenAccount: domain.TokenAccount{Mint: mint, Balance: balance},
		PriceUSD:     priceUsd,
	}
}

func quote(price float64) domain.QuotedPrice {
	return domain.QuotedPrice{Price: price, AsOf: time.Now()}
}

func TestBuild(t *testing.T) {
	tokens := []domain.EnrichedToken{
		holding("mintA", 10, 5),  // $50
		holding("mintB", 100, 2), // $200
		holding("mintC", 1, 0),   // unpriced
	}

	s := Build(tokens, 2, quote(100))

	if !almostEqual(s.TokenValue, 250) {
		t.Errorf("tokenValue = %v, want 250", s.TokenValue)
	}
	if !almostEqual(s.TotalValue, 450) {
		t.Errorf("totalValue = %v, want 450", s.TotalValue)
	}
	if s.TokenCount != 3 {
		t.Errorf("tokenCount = %d, want 3", s.TokenCount)
	}
	if !almostEqual(s.TopHoldingPct, 80) {
		t.Errorf("topHoldingPct = %v, want 80", s.TopHoldingPct)
	}
	if !almostEqual(s.AvgTokenValue, 250.0/3) {
		t.Errorf("avgTokenValue = %v", s.AvgTokenValue)
	}
}

func TestBuild_NoTokens(t *testing.T) {
	s := Build(nil, 1.5, quote(100))

	if !almostEqual(s.TotalValue, 150) {
		t.Errorf("totalValue = %v, want 150", s.TotalValue)
	}
	if s.TopHoldingPct != 0 || s.AvgTokenValue != 0 {
		t.Errorf("empty portfolio ratios should be 0: %+v", s)
	}
}

func TestBuild_UnpricedNative(t *testing.T) {
	s := Build([]domain.EnrichedToken{holding("mintA", 10, 5)}, 3, domain.QuotedPrice{})
	if !almostEqual(s.TotalValue, 50) {
		t.Errorf("totalValue = %v, native should contribute nothing without a price", s.TotalValue)
	}
	if !almostEqual(s.NativeBalance, 3) {
		t.Errorf("nativeBalance = %v, want raw 3", s.NativeBalance)
	}
}

func standing(total, native float64, tokenCount int) WalletStanding {
	return WalletStanding{
		Snapshot: domain.PortfolioSnapshot{
			TotalValue:    total,
			NativeBalance: native,
			TokenCount:    tokenCount,
		},
	}
}

func TestCompare_BaseMajority(t *testing.T) {
	base := standing(1000, 10, 5)
	base.Snapshot.TokenValue = 500
	base.Snapshot.TopHoldingPct = 40
	base.Snapshot.AvgTokenValue = 100

	other := standing(100, 1, 2)

	r := Compare(base, other)
	if len(r.Metrics) != 6 {
		t.Fatalf("expected 6 metrics without PnL, got %d", len(r.Metrics))
	}
	if r.BaseWins != 6 || r.OtherWins != 0 {
		t.Errorf("score = %d-%d, want 6-0", r.BaseWins, r.OtherWins)
	}
	if r.Winner != domain.WinnerBase {
		t.Errorf("winner = %s", r.Winner)
	}
}

func TestCompare_TiesScoreForOther(t *testing.T) {
	base := standing(100, 5, 3)
	other := standing(100, 5, 3)

	r := Compare(base, other)
	if r.BaseWins != 0 || r.OtherWins != 6 {
		t.Errorf("score = %d-%d, identical wallets tie every metric to other", r.BaseWins, r.OtherWins)
	}
	if r.Winner != domain.WinnerOther {
		t.Errorf("winner = %s", r.Winner)
	}
}

func TestCompare_PnLMetricsRequireBothSides(t *testing.T) {
	base := standing(100, 5, 3)
	base.RealizedPnL = 10
	base.HasPnL = true
	other := standing(50, 2, 1)

	r := Compare(base, other)
	if len(r.Metrics) != 6 {
		t.Errorf("one-sided PnL must not add metrics, got %d", len(r.Metrics))
	}

	other.HasPnL = true
	other.RealizedPnL = -20
	other.TokensTraded = 4
	r = Compare(base, other)
	if len(r.Metrics) != 8 {
		t.Fatalf("expected 8 metrics with PnL, got %d", len(r.Metrics))
	}
}

func TestCompare_PnLComparesByMagnitude(t *testing.T) {
	base := standing(0, 0, 0)
	base.RealizedPnL = 5
	base.HasPnL = true
	other := standing(0, 0, 0)
	other.RealizedPnL = -8
	other.HasPnL = true

	r := Compare(base, other)
	var pnlMetric *domain.ComparisonMetric
	for i := range r.Metrics {
		if r.Metrics[i].Label == "Total PnL" {
			pnlMetric = &r.Metrics[i]
		}
	}
	if pnlMetric == nil {
		t.Fatal("no PnL metric")
	}
	if pnlMetric.BaseWins {
		t.Error("|-8| beats |5|, base should not win the PnL metric")
	}
}

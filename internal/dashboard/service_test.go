package dashboard

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"solana-wallet-pnl/internal/domain"
)

// Valid base58 32-byte addresses for tests.
const (
	primaryAddr = "So11111111111111111111111111111111111111112"
	guestAddr   = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

type stubBalances struct {
	balances map[string]float64
	err      error
}

func (s *stubBalances) GetSOLBalance(ctx context.Context, address string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.balances[address], nil
}

type stubHoldings struct {
	tokens   []domain.EnrichedToken
	byWallet map[string][]domain.EnrichedToken
	err      error
}

func (s *stubHoldings) Refresh(ctx context.Context, wallet string) ([]domain.EnrichedToken, error) {
	if s.byWallet != nil {
		return s.byWallet[wallet], s.err
	}
	return s.tokens, s.err
}

func (s *stubHoldings) RefreshPrices(ctx context.Context, tokens []domain.EnrichedToken) []domain.EnrichedToken {
	return tokens
}

type stubHistory struct {
	swaps     []domain.SwapTransaction
	transfers []domain.TransferTransaction
	enabled   bool
	calls     int
}

func (s *stubHistory) Swaps(ctx context.Context, wallet string) ([]domain.SwapTransaction, error) {
	s.calls++
	return s.swaps, nil
}

func (s *stubHistory) Transfers(ctx context.Context, wallet string) ([]domain.TransferTransaction, error) {
	return s.transfers, nil
}

func (s *stubHistory) Enabled() bool { return s.enabled }

type stubPrice struct {
	quote domain.QuotedPrice
}

func (s *stubPrice) Current() domain.QuotedPrice { return s.quote }

func buySwap(wallet, mint string, lamportsOut int64, amount float64) domain.SwapTransaction {
	return domain.SwapTransaction{
		Signature: "sig-" + mint,
		Timestamp: time.Now().Unix(),
		NativeTransfers: []domain.NativeTransfer{
			{FromUserAccount: wallet, ToUserAccount: "pool", Lamports: lamportsOut},
		},
		TokenTransfers: []domain.TokenTransfer{
			{FromUserAccount: "pool", ToUserAccount: wallet, Mint: mint, Amount: amount},
		},
	}
}

func newTestService(balances *stubBalances, holdings *stubHoldings, history, guest *stubHistory, price float64) *Service {
	return NewService(balances, holdings, history, guest,
		&stubPrice{quote: domain.QuotedPrice{Price: price, AsOf: time.Now()}},
		Config{
			PrimaryWallet: primaryAddr,
			HistoryStart:  time.Now().Add(-24 * time.Hour),
			GoalSOL:       100,
		}, nil)
}

func TestService_LoadPortfolio(t *testing.T) {
	balances := &stubBalances{balances: map[string]float64{primaryAddr: 50}}
	holdings := &stubHoldings{tokens: []domain.EnrichedToken{
		{TokenAccount: domain.TokenAccount{Mint: "mintA", Balance: 10}, PriceUSD: 2},
	}}
	svc := newTestService(balances, holdings, &stubHistory{}, &stubHistory{}, 100)

	p, err := svc.LoadPortfolio(context.Background(), primaryAddr)
	if err != nil {
		t.Fatalf("LoadPortfolio: %v", err)
	}
	if p.NativeBalance != 50 {
		t.Errorf("balance = %v", p.NativeBalance)
	}
	if math.Abs(p.Snapshot.TotalValue-5020) > 1e-9 {
		t.Errorf("totalValue = %v, want 5020", p.Snapshot.TotalValue)
	}
	if math.Abs(p.GoalPct-50) > 1e-9 {
		t.Errorf("goalPct = %v, want 50", p.GoalPct)
	}
	if p.PayURL != "solana:"+primaryAddr {
		t.Errorf("payUrl = %s", p.PayURL)
	}
}

func TestService_LoadPortfolio_InvalidWallet(t *testing.T) {
	svc := newTestService(&stubBalances{}, &stubHoldings{}, &stubHistory{}, &stubHistory{}, 100)
	if _, err := svc.LoadPortfolio(context.Background(), "nope"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestService_LoadPortfolio_BalanceFailureFatal(t *testing.T) {
	balances := &stubBalances{err: errors.New("rpc down")}
	svc := newTestService(balances, &stubHoldings{}, &stubHistory{}, &stubHistory{}, 100)

	if _, err := svc.LoadPortfolio(context.Background(), primaryAddr); err == nil {
		t.Fatal("balance failure must surface")
	}
}

func TestService_LoadPortfolio_HoldingsFailureDegrades(t *testing.T) {
	balances := &stubBalances{balances: map[string]float64{primaryAddr: 5}}
	holdings := &stubHoldings{err: errors.New("rpc down")}
	svc := newTestService(balances, holdings, &stubHistory{}, &stubHistory{}, 100)

	p, err := svc.LoadPortfolio(context.Background(), primaryAddr)
	if err != nil {
		t.Fatalf("holdings failure should degrade, got %v", err)
	}
	if len(p.Tokens) != 0 || p.NativeBalance != 5 {
		t.Errorf("portfolio = %+v", p)
	}
}

func TestService_LoadPnL(t *testing.T) {
	history := &stubHistory{
		swaps:   []domain.SwapTransaction{buySwap(primaryAddr, "mintA", 2_000_000_000, 100)},
		enabled: true,
	}
	svc := newTestService(&stubBalances{}, &stubHoldings{}, history, &stubHistory{}, 100)

	report, err := svc.LoadPnL(context.Background(), primaryAddr, nil)
	if err != nil {
		t.Fatalf("LoadPnL: %v", err)
	}
	entry := report.Entries["mintA"]
	if entry == nil || entry.Bought != 100 {
		t.Fatalf("entries = %+v", report.Entries)
	}
	if math.Abs(report.Summary.NetRealized+2) > 1e-9 {
		t.Errorf("netRealized = %v, want -2", report.Summary.NetRealized)
	}
}

func TestService_GuestWalletUsesGuestHistory(t *testing.T) {
	primary := &stubHistory{enabled: true}
	guest := &stubHistory{enabled: true}
	svc := newTestService(&stubBalances{}, &stubHoldings{}, primary, guest, 100)

	if _, err := svc.LoadPnL(context.Background(), guestAddr, nil); err != nil {
		t.Fatalf("LoadPnL: %v", err)
	}
	if primary.calls != 0 {
		t.Error("guest wallet must not use the primary history depth")
	}
	if guest.calls != 1 {
		t.Errorf("guest history calls = %d, want 1", guest.calls)
	}
}

func TestService_Compare(t *testing.T) {
	balances := &stubBalances{balances: map[string]float64{primaryAddr: 100, guestAddr: 1}}
	holdings := &stubHoldings{byWallet: map[string][]domain.EnrichedToken{
		primaryAddr: {{TokenAccount: domain.TokenAccount{Mint: "mintA", Balance: 10}, PriceUSD: 3}},
	}}
	history := &stubHistory{
		swaps:   []domain.SwapTransaction{buySwap(primaryAddr, "mintA", 1_000_000_000, 10)},
		enabled: true,
	}
	guest := &stubHistory{enabled: true}
	svc := newTestService(balances, holdings, history, guest, 100)

	result, err := svc.Compare(context.Background(), primaryAddr, guestAddr)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.Winner != domain.WinnerBase {
		t.Errorf("winner = %s, want base", result.Winner)
	}
	// Guest has no ledger entries, so PnL metrics are excluded.
	if len(result.Metrics) != 6 {
		t.Errorf("metrics = %d, want 6", len(result.Metrics))
	}
}

func TestService_Compare_OneSideFailing(t *testing.T) {
	balances := &stubBalances{err: errors.New("rpc down")}
	svc := newTestService(balances, &stubHoldings{}, &stubHistory{}, &stubHistory{}, 100)

	if _, err := svc.Compare(context.Background(), primaryAddr, guestAddr); err == nil {
		t.Fatal("expected comparison failure")
	}
}

func TestService_History(t *testing.T) {
	balances := &stubBalances{balances: map[string]float64{primaryAddr: 10}}
	history := &stubHistory{
		swaps:   []domain.SwapTransaction{buySwap(primaryAddr, "mintA", 2_000_000_000, 100)},
		enabled: true,
	}
	svc := newTestService(balances, &stubHoldings{}, history, &stubHistory{}, 100)

	points, err := svc.History(context.Background(), primaryAddr)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(points) == 0 {
		t.Fatal("expected at least one bucket")
	}
	last := points[len(points)-1]
	if last.NativeBalance < 0 {
		t.Errorf("native balance must not go negative: %+v", last)
	}
}

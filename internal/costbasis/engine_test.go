package costbasis

import (
	"math"
	"testing"

	"solana-wallet-pnl/internal/domain"
)

const wallet = "myWallet11111111111111111111111111111111111"

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func nativeOut(lamports int64) domain.NativeTransfer {
	return domain.NativeTransfer{FromUserAccount: wallet, ToUserAccount: "pool", Lamports: lamports}
}

func nativeIn(lamports int64) domain.NativeTransfer {
	return domain.NativeTransfer{FromUserAccount: "pool", ToUserAccount: wallet, Lamports: lamports}
}

func tokenIn(mint string, amount float64) domain.TokenTransfer {
	return domain.TokenTransfer{FromUserAccount: "pool", ToUserAccount: wallet, Mint: mint, Amount: amount}
}

func tokenOut(mint string, amount float64) domain.TokenTransfer {
	return domain.TokenTransfer{FromUserAccount: wallet, ToUserAccount: "pool", Mint: mint, Amount: amount}
}

func TestBuild_SimpleBuy(t *testing.T) {
	swaps := []domain.SwapTransaction{{
		Signature:       "sig1",
		Timestamp:       1700000000,
		NativeTransfers: []domain.NativeTransfer{nativeOut(2_000_000_000)},
		TokenTransfers:  []domain.TokenTransfer{tokenIn("mintA", 100)},
	}}

	ledger := Build(swaps, nil, wallet)

	e := ledger["mintA"]
	if e == nil {
		t.Fatal("no entry for mintA")
	}
	if e.Bought != 100 {
		t.Errorf("bought = %v, want 100", e.Bought)
	}
	if !almostEqual(e.NativeSpent, 2.0) {
		t.Errorf("nativeSpent = %v, want 2.0", e.NativeSpent)
	}
	if len(e.Trades) != 1 || e.Trades[0].Type != domain.TradeBuy {
		t.Fatalf("trades = %+v", e.Trades)
	}
	if e.Trades[0].Signature != "sig1" || e.Trades[0].Timestamp != 1700000000 {
		t.Errorf("trade provenance = %+v", e.Trades[0])
	}
}

func TestBuild_SimpleSell(t *testing.T) {
	swaps := []domain.SwapTransaction{{
		Signature:       "sig2",
		Timestamp:       1700000100,
		NativeTransfers: []domain.NativeTransfer{nativeIn(3_000_000_000)},
		TokenTransfers:  []domain.TokenTransfer{tokenOut("mintA", 40)},
	}}

	ledger := Build(swaps, nil, wallet)

	e := ledger["mintA"]
	if e.Sold != 40 {
		t.Errorf("sold = %v, want 40", e.Sold)
	}
	if !almostEqual(e.NativeReceived, 3.0) {
		t.Errorf("nativeReceived = %v, want 3.0", e.NativeReceived)
	}
	if len(e.Trades) != 1 || e.Trades[0].Type != domain.TradeSell {
		t.Fatalf("trades = %+v", e.Trades)
	}
}

func TestBuild_MultiLegEvenSplit(t *testing.T) {
	// One swap buys two tokens for 3 SOL total: each leg gets half.
	swaps := []domain.SwapTransaction{{
		Signature:       "sig3",
		Timestamp:       1700000200,
		NativeTransfers: []domain.NativeTransfer{nativeOut(3_000_000_000)},
		TokenTransfers: []domain.TokenTransfer{
			tokenIn("mintA", 10),
			tokenIn("mintB", 500),
		},
	}}

	ledger := Build(swaps, nil, wallet)

	if !almostEqual(ledger["mintA"].NativeSpent, 1.5) {
		t.Errorf("mintA spent = %v, want 1.5", ledger["mintA"].NativeSpent)
	}
	if !almostEqual(ledger["mintB"].NativeSpent, 1.5) {
		t.Errorf("mintB spent = %v, want 1.5", ledger["mintB"].NativeSpent)
	}
}

func TestBuild_WrappedSOLCountsAsNativeNotToken(t *testing.T) {
	// Swap routed through wrapped SOL: 0.5 SOL direct + 1.5 WSOL out.
	swaps := []domain.SwapTransaction{{
		Signature:       "sig4",
		Timestamp:       1700000300,
		NativeTransfers: []domain.NativeTransfer{nativeOut(500_000_000)},
		TokenTransfers: []domain.TokenTransfer{
			tokenOut(domain.WrappedSOLMint, 1.5),
			tokenIn("mintA", 100),
		},
	}}

	ledger := Build(swaps, nil, wallet)

	if _, ok := ledger[domain.WrappedSOLMint]; ok {
		t.Error("wrapped SOL must not get a ledger entry")
	}
	if !almostEqual(ledger["mintA"].NativeSpent, 2.0) {
		t.Errorf("mintA spent = %v, want 2.0 (direct + wrapped)", ledger["mintA"].NativeSpent)
	}
}

func TestBuild_ZeroAmountLegCreatesEmptyEntry(t *testing.T) {
	swaps := []domain.SwapTransaction{{
		Signature:       "sig5",
		Timestamp:       1700000400,
		NativeTransfers: []domain.NativeTransfer{nativeOut(1_000_000_000)},
		TokenTransfers: []domain.TokenTransfer{
			tokenIn("mintZero", 0),
			tokenIn("mintA", 10),
		},
	}}

	ledger := Build(swaps, nil, wallet)

	e := ledger["mintZero"]
	if e == nil {
		t.Fatal("zero-amount leg should still create an entry")
	}
	if e.Bought != 0 || len(e.Trades) != 0 {
		t.Errorf("zero-amount entry must stay empty: %+v", e)
	}
	// The split denominator counts only positive wallet legs.
	if !almostEqual(ledger["mintA"].NativeSpent, 1.0) {
		t.Errorf("mintA spent = %v, want full 1.0", ledger["mintA"].NativeSpent)
	}
}

func TestBuild_NonWalletLegExcludedFromSplit(t *testing.T) {
	swaps := []domain.SwapTransaction{{
		Signature:       "sig6",
		Timestamp:       1700000500,
		NativeTransfers: []domain.NativeTransfer{nativeOut(2_000_000_000)},
		TokenTransfers: []domain.TokenTransfer{
			tokenIn("mintA", 10),
			{FromUserAccount: "other1", ToUserAccount: "other2", Mint: "mintOther", Amount: 99},
		},
	}}

	ledger := Build(swaps, nil, wallet)

	if !almostEqual(ledger["mintA"].NativeSpent, 2.0) {
		t.Errorf("mintA spent = %v, want 2.0", ledger["mintA"].NativeSpent)
	}
	e := ledger["mintOther"]
	if e == nil {
		t.Fatal("bystander leg should still create an entry")
	}
	if len(e.Trades) != 0 || e.Bought != 0 {
		t.Errorf("bystander entry must carry no amounts: %+v", e)
	}
}

func TestBuild_SwapWithoutTokenLegsSkipped(t *testing.T) {
	swaps := []domain.SwapTransaction{{
		Signature:       "sig7",
		Timestamp:       1700000600,
		NativeTransfers: []domain.NativeTransfer{nativeOut(1_000_000_000)},
	}}

	ledger := Build(swaps, nil, wallet)
	if len(ledger) != 0 {
		t.Errorf("expected empty ledger, got %v", ledger)
	}
}

func TestBuild_TransfersAnnotateWithoutCostMath(t *testing.T) {
	transfers := []domain.TransferTransaction{{
		Signature: "tsig1",
		Timestamp: 1700000700,
		TokenTransfers: []domain.TokenTransfer{
			tokenIn("mintA", 25),
			tokenOut("mintB", 5),
			tokenIn(domain.WrappedSOLMint, 1.0),
		},
	}}

	ledger := Build(nil, transfers, wallet)

	a := ledger["mintA"]
	if len(a.Transfers) != 1 || a.Transfers[0].Direction != domain.TransferIn {
		t.Errorf("mintA transfers = %+v", a.Transfers)
	}
	if a.Bought != 0 || a.NativeSpent != 0 {
		t.Error("transfers must not affect cost-basis totals")
	}

	b := ledger["mintB"]
	if len(b.Transfers) != 1 || b.Transfers[0].Direction != domain.TransferOut {
		t.Errorf("mintB transfers = %+v", b.Transfers)
	}

	if _, ok := ledger[domain.WrappedSOLMint]; ok {
		t.Error("wrapped SOL transfers must be ignored")
	}
}

func TestBuild_RoundTripRealized(t *testing.T) {
	swaps := []domain.SwapTransaction{
		{
			Signature:       "buy",
			Timestamp:       1700000800,
			NativeTransfers: []domain.NativeTransfer{nativeOut(2_000_000_000)},
			TokenTransfers:  []domain.TokenTransfer{tokenIn("mintA", 100)},
		},
		{
			Signature:       "sell",
			Timestamp:       1700000900,
			NativeTransfers: []domain.NativeTransfer{nativeIn(3_000_000_000)},
			TokenTransfers:  []domain.TokenTransfer{tokenOut("mintA", 100)},
		},
	}

	ledger := Build(swaps, nil, wallet)
	e := ledger["mintA"]

	if !almostEqual(e.Realized(), 1.0) {
		t.Errorf("realized = %v, want 1.0", e.Realized())
	}
	if !almostEqual(e.Remaining(), 0) {
		t.Errorf("remaining = %v, want 0", e.Remaining())
	}
	if e.BuyCount() != 1 || e.SellCount() != 1 {
		t.Errorf("counts = %d buys, %d sells", e.BuyCount(), e.SellCount())
	}
}

// Package costbasis reconstructs per-token acquisition ledgers from
// enriched transaction history. It is pure: no I/O, no clock, fully
// deterministic for a given input.
package costbasis

import (
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
)

// Ledger maps mint to its cost-basis accumulator.
type Ledger map[string]*domain.CostBasisEntry

// Build reconstructs the wallet's cost basis from swap and transfer
// history.
//
// Each swap's native flow (direct lamport transfers plus wrapped-SOL token
// legs touching the wallet) is split evenly across the wallet's own
// positive token legs: a multi-token swap attributes 1/n of the native
// amount to each leg. Legs that do not involve the wallet still create an
// empty ledger entry for their mint but contribute no amounts.
//
// Transfers annotate the ledger without entering the cost math.
func Build(swaps []domain.SwapTransaction, transfers []domain.TransferTransaction, wallet string) Ledger {
	ledger := make(Ledger)

	ensure := func(mint string) *domain.CostBasisEntry {
		e, ok := ledger[mint]
		if !ok {
			e = &domain.CostBasisEntry{Mint: mint}
			ledger[mint] = e
		}
		return e
	}

	for _, tx := range swaps {
		if len(tx.TokenTransfers) == 0 {
			continue
		}

		nativeOut, nativeIn := nativeFlow(tx, wallet)

		// Token legs, wrapped SOL excluded: it already counts as native flow.
		var tokenMoves []domain.TokenTransfer
		for _, tt := range tx.TokenTransfers {
			if tt.Mint != "" && tt.Mint != domain.WrappedSOLMint {
				tokenMoves = append(tokenMoves, tt)
			}
		}

		numMoves := 0
		for _, tt := range tokenMoves {
			if (tt.ToUserAccount == wallet || tt.FromUserAccount == wallet) && tt.Amount > 0 {
				numMoves++
			}
		}
		if numMoves == 0 {
			numMoves = 1
		}
		share := 1.0 / float64(numMoves)

		for _, tt := range tokenMoves {
			entry := ensure(tt.Mint)
			if tt.Amount <= 0 {
				continue
			}

			switch {
			case tt.ToUserAccount == wallet:
				cost := nativeOut * share
				entry.Bought += tt.Amount
				entry.NativeSpent += cost
				entry.Trades = append(entry.Trades, domain.Trade{
					Type:         domain.TradeBuy,
					Amount:       tt.Amount,
					NativeAmount: cost,
					Timestamp:    tx.Timestamp,
					Signature:    tx.Signature,
				})
			case tt.FromUserAccount == wallet:
				proceeds := nativeIn * share
				entry.Sold += tt.Amount
				entry.NativeReceived += proceeds
				entry.Trades = append(entry.Trades, domain.Trade{
					Type:         domain.TradeSell,
					Amount:       tt.Amount,
					NativeAmount: proceeds,
					Timestamp:    tx.Timestamp,
					Signature:    tx.Signature,
				})
			}
		}
	}

	for _, tx := range transfers {
		for _, tt := range tx.TokenTransfers {
			if tt.Mint == "" || tt.Mint == domain.WrappedSOLMint {
				continue
			}
			entry := ensure(tt.Mint)
			if tt.Amount <= 0 {
				continue
			}

			switch {
			case tt.ToUserAccount == wallet:
				entry.Transfers = append(entry.Transfers, domain.Transfer{
					Direction: domain.TransferIn,
					Amount:    tt.Amount,
					Timestamp: tx.Timestamp,
					Signature: tx.Signature,
				})
			case tt.FromUserAccount == wallet:
				entry.Transfers = append(entry.Transfers, domain.Transfer{
					Direction: domain.TransferOut,
					Amount:    tt.Amount,
					Timestamp: tx.Timestamp,
					Signature: tx.Signature,
				})
			}
		}
	}

	observability.RecordPnLComputation()
	return ledger
}

// nativeFlow sums the wallet's native SOL outflow and inflow for one
// swap: direct lamport transfers plus wrapped-SOL token legs.
func nativeFlow(tx domain.SwapTransaction, wallet string) (out, in float64) {
	for _, nt := range tx.NativeTransfers {
		if nt.FromUserAccount == wallet {
			out += nt.SOL()
		}
		if nt.ToUserAccount == wallet {
			in += nt.SOL()
		}
	}
	for _, tt := range tx.TokenTransfers {
		if tt.Mint != domain.WrappedSOLMint {
			continue
		}
		if tt.FromUserAccount == wallet {
			out += tt.Amount
		}
		if tt.ToUserAccount == wallet {
			in += tt.Amount
		}
	}
	return out, in
}

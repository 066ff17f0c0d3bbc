package domain

// TradeType classifies a directional token movement against native SOL.
type TradeType string

// Trade type constants
const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Trade is an atomic directional movement of a token against native SOL,
// derived from a swap transaction. Created exclusively by the cost-basis
// engine and immutable once appended to a ledger.
type Trade struct {
	Type         TradeType `json:"type"`
	Amount       float64   `json:"amount"`       // token units, > 0
	NativeAmount float64   `json:"nativeAmount"` // SOL spent (BUY) or received (SELL)
	Timestamp    int64     `json:"timestamp"`    // Unix seconds
	Signature    string    `json:"signature"`    // source transaction signature
}

// TransferDirection classifies a non-swap token movement.
type TransferDirection string

// Transfer direction constants
const (
	TransferIn  TransferDirection = "IN"
	TransferOut TransferDirection = "OUT"
)

// Transfer is a non-swap token movement (airdrop, manual send/receive).
// Recorded for completeness but excluded from cost-basis math.
type Transfer struct {
	Direction TransferDirection `json:"direction"`
	Amount    float64           `json:"amount"`
	Timestamp int64             `json:"timestamp"`
	Signature string            `json:"signature"`
}

// CostBasisEntry is the per-mint accumulator produced by the cost-basis
// engine. Trades follow transaction processing order, NOT chronological
// order; consumers requiring chronology must sort explicitly.
type CostBasisEntry struct {
	Mint           string     `json:"mint"`
	Bought         float64    `json:"bought"`
	Sold           float64    `json:"sold"`
	NativeSpent    float64    `json:"nativeSpent"`
	NativeReceived float64    `json:"nativeReceived"`
	Trades         []Trade    `json:"trades"`
	Transfers      []Transfer `json:"transfers"`
}

// Realized returns the realized PnL in SOL: proceeds minus cost of the
// closed portion. Always computable, independent of current price.
func (e *CostBasisEntry) Realized() float64 {
	return e.NativeReceived - e.NativeSpent
}

// Remaining returns the still-held quantity implied by the ledger.
func (e *CostBasisEntry) Remaining() float64 {
	return e.Bought - e.Sold
}

// AvgCost returns the average acquisition cost per unit in SOL.
func (e *CostBasisEntry) AvgCost() float64 {
	if e.Bought <= 0 {
		return 0
	}
	return e.NativeSpent / e.Bought
}

// BuyCount returns the number of BUY trades in the ledger.
func (e *CostBasisEntry) BuyCount() int {
	n := 0
	for _, t := range e.Trades {
		if t.Type == TradeBuy {
			n++
		}
	}
	return n
}

// SellCount returns the number of SELL trades in the ledger.
func (e *CostBasisEntry) SellCount() int {
	return len(e.Trades) - e.BuyCount()
}

package domain

// NativeTransfer is a native SOL balance change within a transaction.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Lamports        int64  `json:"amount"`
}

// SOL returns the transferred amount in SOL.
func (n NativeTransfer) SOL() float64 {
	return float64(n.Lamports) / LamportsPerSOL
}

// TokenTransfer is one token leg of a transaction with resolved mint,
// amount and direction. Amounts are in UI units.
type TokenTransfer struct {
	FromUserAccount string  `json:"fromUserAccount"`
	ToUserAccount   string  `json:"toUserAccount"`
	Mint            string  `json:"mint"`
	Amount          float64 `json:"tokenAmount"`
}

// SwapTransaction is an enriched swap observed in wallet history. The
// indexer resolves native deltas and token legs; the cost-basis engine
// never parses raw instruction data itself.
type SwapTransaction struct {
	Signature       string           `json:"signature"`
	Timestamp       int64            `json:"timestamp"`
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers  []TokenTransfer  `json:"tokenTransfers"`
}

// TransferTransaction is an enriched non-swap transfer (airdrop, send,
// receive) observed in wallet history.
type TransferTransaction struct {
	Signature      string          `json:"signature"`
	Timestamp      int64           `json:"timestamp"`
	TokenTransfers []TokenTransfer `json:"tokenTransfers"`
}

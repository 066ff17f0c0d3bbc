package domain

// ValuationPoint is one bucket of the reconstructed portfolio history.
// Token value is marked at the CURRENT price, not the historical one: the
// series answers "what would today's prices make of historical holdings",
// since no historical price feed exists. Known approximation, kept.
type ValuationPoint struct {
	Timestamp        int64   `json:"timestamp"`        // bucket start, Unix seconds
	NativeBalance    float64 `json:"nativeBalance"`    // SOL, floored at zero
	TokenValueNative float64 `json:"tokenValueNative"` // SOL
	TotalNative      float64 `json:"totalNative"`      // SOL
}

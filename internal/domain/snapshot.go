package domain

// PortfolioSnapshot is a derived, read-only summary of a wallet.
type PortfolioSnapshot struct {
	TotalValue    float64 `json:"totalValue"`    // USD, tokens + native
	NativeBalance float64 `json:"nativeBalance"` // SOL
	TokenCount    int     `json:"tokenCount"`
	TokenValue    float64 `json:"tokenValue"`    // USD, tokens only
	TopHoldingPct float64 `json:"topHoldingPct"` // largest token / token value
	AvgTokenValue float64 `json:"avgTokenValue"` // USD
}

// ComparisonMetric is one head-to-head measurement between two wallets.
// PnL-style metrics compare by magnitude, everything else by raw value.
type ComparisonMetric struct {
	Label       string  `json:"label"`
	Base        float64 `json:"base"`
	Other       float64 `json:"other"`
	ByMagnitude bool    `json:"byMagnitude"`
	BaseWins    bool    `json:"baseWins"`
}

// Comparison winner codes
const (
	WinnerBase  = "base"
	WinnerOther = "other"
	WinnerTie   = "tie"
)

// ComparisonResult is a metric-by-metric comparison of two wallets with a
// simple majority-count winner. No statistical weighting.
type ComparisonResult struct {
	Metrics   []ComparisonMetric `json:"metrics"`
	BaseWins  int                `json:"baseWins"`
	OtherWins int                `json:"otherWins"`
	Winner    string             `json:"winner"`
}

// Package domain defines the core wallet-dashboard entities shared by all
// components: raw holdings, market data, cost-basis ledgers and snapshots.
package domain

// Well-known chain constants.
const (
	// WrappedSOLMint is the SPL representation of native SOL. Swaps may route
	// SOL through this mint instead of a direct balance change.
	WrappedSOLMint = "So11111111111111111111111111111111111111112"

	// LamportsPerSOL converts raw lamport amounts to SOL.
	LamportsPerSOL = 1e9

	// TokenProgram is the classic SPL token program ID.
	TokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

	// Token2022Program is the token-2022 program ID. Holdings are the union
	// of both program namespaces.
	Token2022Program = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
)

// TokenAccount is a raw on-chain holding, rebuilt fresh on every refresh.
// Zero-balance accounts are discarded at the transport boundary.
type TokenAccount struct {
	Mint     string  `json:"mint"`
	Balance  float64 `json:"balance"`
	Decimals int     `json:"decimals"`
}

// MarketEntry is a single DEX pair observation. A mint may appear as the
// base or quote side of several pools; the holdings resolver picks one
// canonical entry per mint.
type MarketEntry struct {
	PairAddress    string  `json:"pairAddress"`
	PairURL        string  `json:"pairUrl"`
	BaseMint       string  `json:"baseMint"`
	BaseSymbol     string  `json:"baseSymbol"`
	BaseName       string  `json:"baseName"`
	QuoteMint      string  `json:"quoteMint"`
	QuoteSymbol    string  `json:"quoteSymbol"`
	QuoteName      string  `json:"quoteName"`
	PriceUSD       float64 `json:"priceUsd"`
	PriceNative    float64 `json:"priceNative"`
	PriceChange24h float64 `json:"priceChange24h"`
	Volume24h      float64 `json:"volume24h"`
	LiquidityUSD   float64 `json:"liquidity"`
	MarketCap      float64 `json:"marketCap"`
	ImageURL       string  `json:"imageUrl"`
}

// HasMint reports whether the mint appears on either side of the pair.
func (m *MarketEntry) HasMint(mint string) bool {
	return m.BaseMint == mint || m.QuoteMint == mint
}

// EnrichedToken is a TokenAccount merged with its best market entry.
// When no market entry matches, all market fields are zero-valued rather
// than absent so downstream arithmetic needs no null checks.
type EnrichedToken struct {
	TokenAccount

	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	PriceUSD       float64 `json:"priceUsd"`
	PriceNative    float64 `json:"priceNative"`
	PriceChange24h float64 `json:"priceChange24h"`
	Volume24h      float64 `json:"volume24h"`
	LiquidityUSD   float64 `json:"liquidity"`
	MarketCap      float64 `json:"marketCap"`
	ImageURL       string  `json:"imageUrl"`
	PairURL        string  `json:"pairUrl"`
	PairAddress    string  `json:"pairAddress"`
}

// ValueUSD returns the USD value of the holding.
func (t *EnrichedToken) ValueUSD() float64 {
	return t.Balance * t.PriceUSD
}

// ValueNative returns the holding value in SOL terms.
func (t *EnrichedToken) ValueNative() float64 {
	return t.Balance * t.PriceNative
}

package dexscreener

import (
	"strconv"

	"solana-wallet-pnl/internal/domain"
)

// Pair is a single trading pair as returned by the DexScreener API.
// Prices come over the wire as strings.
type Pair struct {
	ChainID     string      `json:"chainId"`
	DexID       string      `json:"dexId"`
	URL         string      `json:"url"`
	PairAddress string      `json:"pairAddress"`
	BaseToken   Token       `json:"baseToken"`
	QuoteToken  Token       `json:"quoteToken"`
	PriceNative string      `json:"priceNative"`
	PriceUsd    string      `json:"priceUsd"`
	Volume      Volume      `json:"volume"`
	PriceChange PriceChange `json:"priceChange"`
	Liquidity   *Liquidity  `json:"liquidity"`
	Fdv         float64     `json:"fdv"`
	MarketCap   float64     `json:"marketCap"`
	Info        *PairInfo   `json:"info"`
}

// Token is one side of a trading pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Liquidity is the pooled liquidity of a pair. Nullable in the API.
type Liquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// Volume is trading volume over standard windows.
type Volume struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// PriceChange is price change percentage over standard windows.
type PriceChange struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// PairInfo carries optional pair metadata.
type PairInfo struct {
	ImageURL string `json:"imageUrl"`
}

// pairsEnvelope handles the two response shapes the API uses: a bare
// array (v1 endpoints) or an object with a "pairs" key (latest endpoints).
type pairsEnvelope struct {
	Pairs []Pair `json:"pairs"`
}

// MarketEntry converts the raw pair into the domain representation,
// parsing string prices. Unparseable prices become zero.
func (p *Pair) MarketEntry() domain.MarketEntry {
	entry := domain.MarketEntry{
		PairAddress:    p.PairAddress,
		PairURL:        p.URL,
		BaseMint:       p.BaseToken.Address,
		BaseSymbol:     p.BaseToken.Symbol,
		BaseName:       p.BaseToken.Name,
		QuoteMint:      p.QuoteToken.Address,
		QuoteSymbol:    p.QuoteToken.Symbol,
		QuoteName:      p.QuoteToken.Name,
		PriceUSD:       parsePrice(p.PriceUsd),
		PriceNative:    parsePrice(p.PriceNative),
		PriceChange24h: p.PriceChange.H24,
		Volume24h:      p.Volume.H24,
		MarketCap:      p.MarketCap,
	}
	if entry.MarketCap == 0 {
		entry.MarketCap = p.Fdv
	}
	if p.Liquidity != nil {
		entry.LiquidityUSD = p.Liquidity.Usd
	}
	if p.Info != nil {
		entry.ImageURL = p.Info.ImageURL
	}
	return entry
}

func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func toMarketEntries(pairs []Pair) []domain.MarketEntry {
	out := make([]domain.MarketEntry, 0, len(pairs))
	for i := range pairs {
		out = append(out, pairs[i].MarketEntry())
	}
	return out
}

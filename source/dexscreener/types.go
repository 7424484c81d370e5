package dexscreener

import (
	"strconv"
	"time"

	"github.com/raykavin/pairwatch/core"
)

// searchResponse is the payload of the /latest/dex/search endpoint.
type searchResponse struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []wirePair `json:"pairs"`
}

type wirePair struct {
	ChainID       string     `json:"chainId"`
	DexID         string     `json:"dexId"`
	URL           string     `json:"url"`
	PairAddress   string     `json:"pairAddress"`
	BaseToken     wireToken  `json:"baseToken"`
	QuoteToken    wireToken  `json:"quoteToken"`
	PriceUSD      string     `json:"priceUsd"`
	Liquidity     *liquidity `json:"liquidity"`
	Volume        volume     `json:"volume"`
	PairCreatedAt int64      `json:"pairCreatedAt"` // ms epoch, 0 when unknown
}

type wireToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type liquidity struct {
	USD float64 `json:"usd"`
}

type volume struct {
	H24 float64 `json:"h24"`
}

// toPair maps the wire representation onto the domain type. A missing
// creation timestamp stays the zero time; missing liquidity stays zero.
func (w wirePair) toPair() core.Pair {
	pair := core.Pair{
		Address:     w.PairAddress,
		ChainID:     w.ChainID,
		DexID:       w.DexID,
		URL:         w.URL,
		BaseName:    w.BaseToken.Name,
		BaseSymbol:  w.BaseToken.Symbol,
		QuoteSymbol: w.QuoteToken.Symbol,
		VolumeH24:   w.Volume.H24,
	}

	if w.PairCreatedAt > 0 {
		pair.CreatedAt = time.UnixMilli(w.PairCreatedAt)
	}

	if w.Liquidity != nil {
		pair.LiquidityUSD = w.Liquidity.USD
	}

	if price, err := strconv.ParseFloat(w.PriceUSD, 64); err == nil {
		pair.PriceUSD = price
	}

	return pair
}

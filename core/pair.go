package core

import (
	"fmt"
	"time"
)

// Pair is a trading pair discovered on the upstream data source.
// Address is the unique, immutable identifier of the pair on its chain.
// CreatedAt is the pair creation instant; the zero value means the source
// did not report one. LiquidityUSD defaults to zero when absent.
type Pair struct {
	Address      string
	ChainID      string
	DexID        string
	URL          string
	BaseName     string
	BaseSymbol   string
	QuoteSymbol  string
	PriceUSD     float64
	LiquidityUSD float64
	VolumeH24    float64
	CreatedAt    time.Time
}

// HasCreatedAt reports whether the source supplied a creation instant.
func (p Pair) HasCreatedAt() bool {
	return !p.CreatedAt.IsZero()
}

// Age returns the pair age relative to now. Callers must check
// HasCreatedAt first; the age of an unknown creation instant is meaningless.
func (p Pair) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

// Symbol returns the display symbol of the pair, e.g. "WIF/SOL".
func (p Pair) Symbol() string {
	if p.QuoteSymbol == "" {
		return p.BaseSymbol
	}
	return fmt.Sprintf("%s/%s", p.BaseSymbol, p.QuoteSymbol)
}

func (p Pair) String() string {
	return fmt.Sprintf("%s (%s) liquidity=%.2f createdAt=%s",
		p.Symbol(), p.Address, p.LiquidityUSD, p.CreatedAt.Format(time.RFC3339))
}

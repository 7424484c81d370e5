// Package watcher implements the poll cycle: fetch, filter, dedup and
// dispatch of freshly created trading pairs.
package watcher

import (
	"sort"
	"time"

	"github.com/raykavin/pairwatch/core"
)

// FilterConfig holds the freshness and liquidity thresholds applied to a
// raw pair snapshot. Age and liquidity are independently configurable:
// fresh but illiquid pairs are noise, liquid but stale pairs are not
// actionable.
type FilterConfig struct {
	// MaxAge is the freshness window; pairs older than this are rejected.
	MaxAge time.Duration
	// MinLiquidity rejects pairs whose liquidity in USD is below this value.
	MinLiquidity float64
	// MaxResults truncates the accepted list to the N newest pairs.
	// Zero means unbounded.
	MaxResults int
}

// RejectCounts breaks down filter rejections by category.
type RejectCounts struct {
	NoCreatedAt  int // creation instant missing from the source
	InFuture     int // creation instant after now (clock skew / bad data)
	TooOld       int // age exceeds the freshness window
	LowLiquidity int // liquidity below the minimum
}

// Total returns the sum of all rejection categories.
func (r RejectCounts) Total() int {
	return r.NoCreatedAt + r.InFuture + r.TooOld + r.LowLiquidity
}

// FilterResult is the outcome of one filter pass. Eligible counts every
// pair that passed the predicates, before truncation, so that
// Eligible + Rejected.Total() always equals the input length.
type FilterResult struct {
	Accepted []core.Pair
	Rejected RejectCounts
	Eligible int
}

// Filter applies the freshness and liquidity policy to a raw snapshot and
// returns the accepted pairs sorted newest first, truncated to MaxResults.
// It is a pure function: same inputs always produce the same output.
func Filter(pairs []core.Pair, now time.Time, cfg FilterConfig) FilterResult {
	var result FilterResult
	result.Accepted = make([]core.Pair, 0, len(pairs))

	for _, pair := range pairs {
		switch {
		case !pair.HasCreatedAt():
			result.Rejected.NoCreatedAt++
		case pair.CreatedAt.After(now):
			result.Rejected.InFuture++
		case pair.Age(now) > cfg.MaxAge:
			result.Rejected.TooOld++
		case pair.LiquidityUSD < cfg.MinLiquidity:
			result.Rejected.LowLiquidity++
		default:
			result.Accepted = append(result.Accepted, pair)
		}
	}

	result.Eligible = len(result.Accepted)

	// Newest first; ties preserve input order.
	sort.SliceStable(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].CreatedAt.After(result.Accepted[j].CreatedAt)
	})

	if cfg.MaxResults > 0 && len(result.Accepted) > cfg.MaxResults {
		result.Accepted = result.Accepted[:cfg.MaxResults]
	}

	return result
}

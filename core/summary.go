package core

import (
	"fmt"
	"time"
)

// CycleSummary reports the outcome of one poll cycle. The rejection
// categories plus Accepted always sum to Fetched.
type CycleSummary struct {
	StartedAt    time.Time
	Duration     time.Duration
	Fetched      int
	NoCreatedAt  int
	InFuture     int
	TooOld       int
	LowLiquidity int
	Accepted     int
	AlreadySent  int
	Sent         int
	Failed       int
}

// Rejected returns the total number of pairs rejected by the filter.
func (s CycleSummary) Rejected() int {
	return s.NoCreatedAt + s.InFuture + s.TooOld + s.LowLiquidity
}

func (s CycleSummary) String() string {
	return fmt.Sprintf(
		"fetched=%d tooOld=%d lowLiquidity=%d noCreatedAt=%d inFuture=%d accepted=%d alreadySent=%d sent=%d failed=%d",
		s.Fetched, s.TooOld, s.LowLiquidity, s.NoCreatedAt, s.InFuture,
		s.Accepted, s.AlreadySent, s.Sent, s.Failed,
	)
}

// Fields returns the summary as structured log fields.
func (s CycleSummary) Fields() map[string]any {
	return map[string]any{
		"fetched":      s.Fetched,
		"no_created":   s.NoCreatedAt,
		"in_future":    s.InFuture,
		"too_old":      s.TooOld,
		"low_liq":      s.LowLiquidity,
		"accepted":     s.Accepted,
		"already_sent": s.AlreadySent,
		"sent":         s.Sent,
		"failed":       s.Failed,
		"duration":     s.Duration.String(),
	}
}

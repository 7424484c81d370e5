// Package metric aggregates cycle summaries over the lifetime of the
// process.
package metric

import (
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/pairwatch/core"
)

// Session accumulates per-cycle counts and keeps the most recent summary.
// It is safe for concurrent use: the watcher records while chat commands
// read.
type Session struct {
	mu        sync.Mutex
	startedAt time.Time
	cycles    int
	totals    core.CycleSummary
	last      core.CycleSummary
	hasLast   bool
}

// NewSession creates an empty session starting now.
func NewSession() *Session {
	return &Session{startedAt: time.Now()}
}

// Record adds a cycle summary to the session totals.
func (s *Session) Record(summary core.CycleSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cycles++
	s.totals.Fetched += summary.Fetched
	s.totals.NoCreatedAt += summary.NoCreatedAt
	s.totals.InFuture += summary.InFuture
	s.totals.TooOld += summary.TooOld
	s.totals.LowLiquidity += summary.LowLiquidity
	s.totals.Accepted += summary.Accepted
	s.totals.AlreadySent += summary.AlreadySent
	s.totals.Sent += summary.Sent
	s.totals.Failed += summary.Failed

	s.last = summary
	s.hasLast = true
}

// Last returns the most recent cycle summary, if any cycle completed.
func (s *Session) Last() (core.CycleSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Cycles returns the number of recorded cycles.
func (s *Session) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// PrintSummary renders the session totals as a table, typically on
// shutdown.
func (s *Session) PrintSummary(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Total"})

	rows := [][]string{
		{"Uptime", time.Since(s.startedAt).Round(time.Second).String()},
		{"Cycles", strconv.Itoa(s.cycles)},
		{"Fetched", strconv.Itoa(s.totals.Fetched)},
		{"No created at", strconv.Itoa(s.totals.NoCreatedAt)},
		{"In future", strconv.Itoa(s.totals.InFuture)},
		{"Too old", strconv.Itoa(s.totals.TooOld)},
		{"Low liquidity", strconv.Itoa(s.totals.LowLiquidity)},
		{"Accepted", strconv.Itoa(s.totals.Accepted)},
		{"Already sent", strconv.Itoa(s.totals.AlreadySent)},
		{"Sent", strconv.Itoa(s.totals.Sent)},
		{"Failed", strconv.Itoa(s.totals.Failed)},
	}

	for _, row := range rows {
		table.Append(row)
	}

	table.Render()
}

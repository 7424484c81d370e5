package watcher

import (
	"context"
	"time"

	"github.com/raykavin/pairwatch/core"
	"github.com/samber/lo"
)

// Config holds the poll cycle policy.
type Config struct {
	// PollInterval is the period between cycles. A cycle that overruns the
	// period delays the next tick; cycles never overlap.
	PollInterval time.Duration
	// DispatchDelay is the pacing delay inserted between successive
	// notifications, never before the first one.
	DispatchDelay time.Duration
	// Filter is the freshness and liquidity policy.
	Filter FilterConfig
}

// Watcher runs the poll cycle: fetch, filter, dedup against the tracker,
// dispatch in order and mark sent pairs.
type Watcher struct {
	source   core.Source
	notifier core.Notifier
	tracker  core.Tracker
	cfg      Config
	log      core.Logger

	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration)
	onSummary func(core.CycleSummary)
}

// Option is a functional option for configuring a Watcher instance
type Option func(*Watcher)

// WithClock replaces the wall clock, used in tests.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		w.now = now
	}
}

// WithSleep replaces the pacing sleep, used in tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(w *Watcher) {
		w.sleep = sleep
	}
}

// WithSummaryHook registers a callback invoked with every cycle summary.
func WithSummaryHook(hook func(core.CycleSummary)) Option {
	return func(w *Watcher) {
		w.onSummary = hook
	}
}

// New creates a Watcher over the given collaborators.
func New(source core.Source, notifier core.Notifier, tracker core.Tracker, cfg Config, log core.Logger, options ...Option) *Watcher {
	w := &Watcher{
		source:   source,
		notifier: notifier,
		tracker:  tracker,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		sleep:    sleepContext,
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// Run executes poll cycles on a fixed period until the context is
// cancelled. The first cycle runs immediately. It always returns nil;
// cancellation is the normal shutdown path.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return nil
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle executes a single cycle and reports its summary. A panic
// inside a cycle is logged and swallowed; the next scheduled cycle runs
// normally.
func (w *Watcher) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.WithField("panic", r).Error("cycle panicked, waiting for next tick")
		}
	}()

	summary := w.cycle(ctx)
	w.log.WithFields(summary.Fields()).Info("cycle finished")

	if w.onSummary != nil {
		w.onSummary(summary)
	}
}

// cycle runs fetch, filter, dedup and dispatch once.
func (w *Watcher) cycle(ctx context.Context) core.CycleSummary {
	now := w.now()
	summary := core.CycleSummary{StartedAt: now}
	defer func() {
		summary.Duration = w.now().Sub(now)
	}()

	pairs, err := w.source.FetchPairs(ctx)
	if err != nil {
		w.log.WithError(err).Error("fetch failed, skipping cycle")
		return summary
	}
	summary.Fetched = len(pairs)

	result := Filter(pairs, now, w.cfg.Filter)
	summary.NoCreatedAt = result.Rejected.NoCreatedAt
	summary.InFuture = result.Rejected.InFuture
	summary.TooOld = result.Rejected.TooOld
	summary.LowLiquidity = result.Rejected.LowLiquidity
	summary.Accepted = result.Eligible

	fresh, seen := lo.FilterReject(result.Accepted, func(pair core.Pair, _ int) bool {
		return !w.tracker.Has(pair.Address)
	})
	summary.AlreadySent = len(seen)

	w.dispatch(ctx, fresh, &summary)

	return summary
}

// dispatch notifies the given pairs in order, newest first. One pair's
// failure never aborts the batch. The pacing delay is inserted strictly
// between attempts.
func (w *Watcher) dispatch(ctx context.Context, pairs []core.Pair, summary *core.CycleSummary) {
	for i, pair := range pairs {
		if i > 0 {
			w.sleep(ctx, w.cfg.DispatchDelay)
		}

		// Cancellation lets the in-flight pair finish but starts no new one.
		if ctx.Err() != nil {
			return
		}

		if !w.notifier.OnPair(pair, i) {
			summary.Failed++
			w.log.WithField("pair", pair.Symbol()).Warn("dispatch failed")
			continue
		}

		w.tracker.Mark(pair.Address, w.now())
		summary.Sent++
	}
}

// sleepContext sleeps for the given duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

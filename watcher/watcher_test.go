package watcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/raykavin/pairwatch/core"
	zl "github.com/raykavin/pairwatch/logger/zerolog"
	"github.com/raykavin/pairwatch/tracker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	pairs []core.Pair
	err   error
	calls int
}

func (f *fakeSource) FetchPairs(_ context.Context) ([]core.Pair, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pairs, nil
}

type fakeNotifier struct {
	sent   []core.Pair
	seqs   []int
	failOn map[int]bool
}

func (f *fakeNotifier) Notify(string) {}

func (f *fakeNotifier) OnError(error) {}

func (f *fakeNotifier) OnPair(pair core.Pair, seq int) bool {
	f.sent = append(f.sent, pair)
	f.seqs = append(f.seqs, seq)
	return !f.failOn[seq]
}

func nopLogger() core.Logger {
	nop := zerolog.Nop()
	return zl.NewAdapter(&nop)
}

func newTestWatcher(source core.Source, notifier core.Notifier, trk core.Tracker, sleeps *int) *Watcher {
	return New(source, notifier, trk, Config{
		PollInterval:  time.Minute,
		DispatchDelay: 3 * time.Second,
		Filter: FilterConfig{
			MaxAge:       6 * time.Hour,
			MinLiquidity: 500,
			MaxResults:   10,
		},
	}, nopLogger(),
		WithClock(func() time.Time { return filterNow }),
		WithSleep(func(context.Context, time.Duration) { *sleeps++ }),
	)
}

func TestWatcher_CycleEndToEnd(t *testing.T) {
	pairs := make([]core.Pair, 0, 50)
	for i := 0; i < 45; i++ {
		pairs = append(pairs, pairAt(fmt.Sprintf("stale-%d", i), 7*time.Hour, 1000))
	}
	pairs = append(pairs,
		pairAt("broke-1", time.Minute, 100),
		pairAt("broke-2", time.Minute, 400),
		pairAt("good-oldest", 30*time.Minute, 2000),
		pairAt("good-mid", 20*time.Minute, 2000),
		pairAt("good-newest", 10*time.Minute, 2000),
	)
	require.Len(t, pairs, 50)

	var sleeps int
	source := &fakeSource{pairs: pairs}
	notifier := &fakeNotifier{}
	trk := tracker.NewMemory(30 * time.Minute)
	w := newTestWatcher(source, notifier, trk, &sleeps)

	summary := w.cycle(context.Background())

	assert.Equal(t, 50, summary.Fetched)
	assert.Equal(t, 45, summary.TooOld)
	assert.Equal(t, 2, summary.LowLiquidity)
	assert.Equal(t, 3, summary.Accepted)
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.AlreadySent)

	// Dispatch order is newest first.
	require.Len(t, notifier.sent, 3)
	assert.Equal(t, "good-newest", notifier.sent[0].Address)
	assert.Equal(t, "good-mid", notifier.sent[1].Address)
	assert.Equal(t, "good-oldest", notifier.sent[2].Address)

	assert.Equal(t, 3, trk.Count())
}

func TestWatcher_DispatchFailureDoesNotAbortBatch(t *testing.T) {
	pairs := []core.Pair{
		pairAt("first", time.Minute, 1000),
		pairAt("second", 2*time.Minute, 1000),
		pairAt("third", 3*time.Minute, 1000),
	}

	var sleeps int
	source := &fakeSource{pairs: pairs}
	notifier := &fakeNotifier{failOn: map[int]bool{1: true}}
	trk := tracker.NewMemory(30 * time.Minute)
	w := newTestWatcher(source, notifier, trk, &sleeps)

	summary := w.cycle(context.Background())

	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, notifier.sent, 3)

	// Only successfully dispatched pairs are marked.
	assert.True(t, trk.Has("first"))
	assert.False(t, trk.Has("second"))
	assert.True(t, trk.Has("third"))
}

func TestWatcher_PacingDelaysBetweenDispatches(t *testing.T) {
	pairs := []core.Pair{
		pairAt("a", time.Minute, 1000),
		pairAt("b", 2*time.Minute, 1000),
		pairAt("c", 3*time.Minute, 1000),
	}

	var sleeps int
	w := newTestWatcher(&fakeSource{pairs: pairs}, &fakeNotifier{}, tracker.NewMemory(time.Hour), &sleeps)

	w.cycle(context.Background())

	// N items, exactly N-1 delays.
	assert.Equal(t, 2, sleeps)
}

func TestWatcher_SingleItemNoDelay(t *testing.T) {
	var sleeps int
	pairs := []core.Pair{pairAt("only", time.Minute, 1000)}
	w := newTestWatcher(&fakeSource{pairs: pairs}, &fakeNotifier{}, tracker.NewMemory(time.Hour), &sleeps)

	summary := w.cycle(context.Background())

	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 0, sleeps)
}

func TestWatcher_FetchErrorAbortsCycle(t *testing.T) {
	var sleeps int
	source := &fakeSource{err: errors.New("upstream down")}
	notifier := &fakeNotifier{}
	w := newTestWatcher(source, notifier, tracker.NewMemory(time.Hour), &sleeps)

	summary := w.cycle(context.Background())

	assert.Equal(t, 0, summary.Fetched)
	assert.Empty(t, notifier.sent)

	// The next cycle is the retry.
	source.err = nil
	source.pairs = []core.Pair{pairAt("a", time.Minute, 1000)}
	summary = w.cycle(context.Background())
	assert.Equal(t, 1, summary.Sent)
}

func TestWatcher_AlreadySentPairsAreDropped(t *testing.T) {
	pairs := []core.Pair{
		pairAt("seen", time.Minute, 1000),
		pairAt("fresh", 2*time.Minute, 1000),
	}

	var sleeps int
	notifier := &fakeNotifier{}
	trk := tracker.NewMemory(time.Hour)
	trk.Mark("seen", filterNow)
	w := newTestWatcher(&fakeSource{pairs: pairs}, notifier, trk, &sleeps)

	summary := w.cycle(context.Background())

	assert.Equal(t, 2, summary.Accepted)
	assert.Equal(t, 1, summary.AlreadySent)
	assert.Equal(t, 1, summary.Sent)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "fresh", notifier.sent[0].Address)
}

func TestWatcher_CancellationStopsDispatch(t *testing.T) {
	pairs := []core.Pair{
		pairAt("a", time.Minute, 1000),
		pairAt("b", 2*time.Minute, 1000),
		pairAt("c", 3*time.Minute, 1000),
	}

	ctx, cancel := context.WithCancel(context.Background())

	var sleeps int
	notifier := &fakeNotifier{}
	w := New(&fakeSource{pairs: pairs}, notifier, tracker.NewMemory(time.Hour), Config{
		PollInterval: time.Minute,
		Filter:       FilterConfig{MaxAge: time.Hour},
	}, nopLogger(),
		WithClock(func() time.Time { return filterNow }),
		WithSleep(func(context.Context, time.Duration) {
			sleeps++
			cancel()
		}),
	)

	summary := w.cycle(ctx)

	// The first pair goes out, cancellation during the pacing delay stops
	// the rest of the batch.
	assert.Equal(t, 1, summary.Sent)
	require.Len(t, notifier.sent, 1)
}

func TestWatcher_PanicInCycleIsRecovered(t *testing.T) {
	var sleeps int
	w := newTestWatcher(&fakeSource{pairs: []core.Pair{pairAt("a", time.Minute, 1000)}}, &panicNotifier{}, tracker.NewMemory(time.Hour), &sleeps)

	assert.NotPanics(t, func() {
		w.runCycle(context.Background())
	})
}

type panicNotifier struct{}

func (*panicNotifier) Notify(string)              {}
func (*panicNotifier) OnError(error)              {}
func (*panicNotifier) OnPair(core.Pair, int) bool { panic("boom") }

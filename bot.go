package pairwatch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/raykavin/pairwatch/core"
	"github.com/raykavin/pairwatch/metric"
	"github.com/raykavin/pairwatch/notification"
	"github.com/raykavin/pairwatch/source/dexscreener"
	"github.com/raykavin/pairwatch/storage"
	"github.com/raykavin/pairwatch/tracker"
	"github.com/raykavin/pairwatch/watcher"
)

// Bot wires the source, filter, tracker and notifier into a running pair
// watcher.
type Bot struct {
	settings *core.Settings
	source   core.Source
	notifier core.Notifier
	tracker  core.Tracker
	watcher  *watcher.Watcher
	session  *metric.Session
	log      core.Logger
}

// NewBot creates a new Bot instance with the provided settings and dependencies
func NewBot(settings *core.Settings, options ...Option) (*Bot, error) {
	// A configuration error is fatal: the process must not begin polling.
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	bot := &Bot{
		settings: settings,
		session:  metric.NewSession(),
		log:      DefaultLog,
	}

	// Apply custom options
	for _, option := range options {
		option(bot)
	}

	if bot.settings.Debug {
		bot.log.SetLevel(core.DebugLevel)
	}

	if bot.source == nil {
		bot.source = dexscreener.New(settings.Source, bot.log)
	}

	if err := initializeTracker(bot); err != nil {
		return nil, err
	}

	if err := initializeNotifier(bot); err != nil {
		return nil, err
	}

	bot.watcher = watcher.New(
		bot.source,
		bot.notifier,
		bot.tracker,
		watcher.Config{
			PollInterval:  settings.Watcher.PollInterval,
			DispatchDelay: settings.Watcher.DispatchDelay,
			Filter: watcher.FilterConfig{
				MaxAge:       settings.Watcher.MaxPairAge,
				MinLiquidity: settings.Watcher.MinLiquidity,
				MaxResults:   settings.Watcher.MaxPerCycle,
			},
		},
		bot.log,
		watcher.WithSummaryHook(bot.session.Record),
	)

	return bot, nil
}

// initializeTracker builds the tracker selected by the configured strategy
func initializeTracker(bot *Bot) error {
	if bot.tracker != nil {
		return nil
	}

	settings := bot.settings.Tracker
	switch settings.Strategy {
	case core.TrackerFile:
		store := storage.NewFile(settings.Path)
		bot.tracker = tracker.NewPersistent(store, settings.Retention, bot.log)
	case core.TrackerBunt:
		store, err := storage.NewBuntFromFile(settings.Path)
		if err != nil {
			return fmt.Errorf("failed to open tracker store: %w", err)
		}
		bot.tracker = tracker.NewPersistent(store, settings.Retention, bot.log)
	default:
		bot.tracker = tracker.NewMemory(settings.Retention)
	}

	return nil
}

// initializeNotifier builds the notification channel. Without Telegram
// credentials the bot falls back to console output.
func initializeNotifier(bot *Bot) error {
	if bot.notifier != nil {
		return nil
	}

	if !bot.settings.Telegram.Enabled {
		bot.notifier = notification.NewConsole()
		return nil
	}

	telegram, err := notification.NewTelegram(bot.settings, bot, bot.log)
	if err != nil {
		return fmt.Errorf("failed to create telegram notifier: %w", err)
	}

	bot.notifier = telegram
	return nil
}

// LastSummary implements notification.Status.
func (b *Bot) LastSummary() (core.CycleSummary, bool) {
	return b.session.Last()
}

// TrackedCount implements notification.Status.
func (b *Bot) TrackedCount() int {
	return b.tracker.Count()
}

// Run starts the eviction loop, the notifier and the poll cycle loop, and
// blocks until the context is cancelled. On shutdown the tracker state is
// flushed and the session summary printed.
func (b *Bot) Run(ctx context.Context) error {
	b.log.WithFields(map[string]any{
		"chain":     b.settings.Source.ChainID,
		"query":     b.settings.Source.Query,
		"interval":  b.settings.Watcher.PollInterval.String(),
		"max_age":   b.settings.Watcher.MaxPairAge.String(),
		"min_liq":   b.settings.Watcher.MinLiquidity,
		"per_cycle": b.settings.Watcher.MaxPerCycle,
		"tracker":   string(b.settings.Tracker.Strategy),
	}).Info("starting pair watcher")

	if n, ok := b.notifier.(core.NotifierWithStart); ok {
		n.Start()
	}

	go b.runEviction(ctx)

	err := b.watcher.Run(ctx)

	if cerr := b.tracker.Close(); cerr != nil {
		b.log.WithError(cerr).Error("failed to close tracker")
	}

	b.session.PrintSummary(os.Stdout)

	return err
}

// runEviction removes expired tracker entries on its own timer,
// independent of the poll cycle.
func (b *Bot) runEviction(ctx context.Context) {
	interval := b.settings.Tracker.EvictInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := b.tracker.Evict(time.Now()); removed > 0 {
				b.log.WithField("removed", removed).Debug("evicted expired tracker entries")
			}
		}
	}
}

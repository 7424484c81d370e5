package pairwatch

import "github.com/raykavin/pairwatch/core"

// Option is a functional option for configuring a Bot instance
type Option func(*Bot)

// WithSource sets the pair source, by default the DexScreener client
func WithSource(source core.Source) Option {
	return func(bot *Bot) {
		bot.source = source
	}
}

// WithNotifier sets the notification channel, overriding the
// Telegram/console selection from the settings
func WithNotifier(notifier core.Notifier) Option {
	return func(bot *Bot) {
		bot.notifier = notifier
	}
}

// WithTracker sets the dedup tracker, overriding the configured strategy
func WithTracker(tracker core.Tracker) Option {
	return func(bot *Bot) {
		bot.tracker = tracker
	}
}

// WithLogger replaces the default logger
func WithLogger(log core.Logger) Option {
	return func(bot *Bot) {
		bot.log = log
	}
}

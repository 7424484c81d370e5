package core

import "time"

// TrackerStrategy selects how notified pairs are remembered between cycles.
type TrackerStrategy string

const (
	TrackerMemory TrackerStrategy = "memory" // volatile, short retention
	TrackerFile   TrackerStrategy = "file"   // JSON file, long retention
	TrackerBunt   TrackerStrategy = "buntdb" // embedded buntdb, long retention
)

// Settings represents the main configuration for the application
type Settings struct {
	Source   SourceSettings   // Upstream market-data API settings
	Watcher  WatcherSettings  // Poll cycle and filter policy
	Tracker  TrackerSettings  // Dedup tracker settings
	Telegram TelegramSettings // Telegram notification settings
	Debug    bool             // Verbose logging
}

// SourceSettings holds configuration for the upstream data source
type SourceSettings struct {
	BaseURL string // API base URL
	ChainID string // Chain to watch, e.g. "solana"
	Query   string // Search query sent to the API
}

// WatcherSettings holds the filter and poll cycle policy
type WatcherSettings struct {
	PollInterval  time.Duration // Period between poll cycles
	MaxPairAge    time.Duration // Freshness window
	MinLiquidity  float64       // Minimum liquidity in USD
	MaxPerCycle   int           // Maximum pairs notified per cycle
	DispatchDelay time.Duration // Pacing delay between notifications
}

// TrackerSettings holds the dedup tracker policy
type TrackerSettings struct {
	Strategy      TrackerStrategy // memory, file or buntdb
	Retention     time.Duration   // How long a notified pair stays tracked
	EvictInterval time.Duration   // Period of the eviction loop
	Path          string          // Store path for durable strategies
}

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Enabled bool    // Whether Telegram notifications are enabled
	Token   string  // Telegram bot token
	Users   []int64 // List of authorized user IDs
}

// Validate checks that required credentials and identifiers are present.
// A validation error is fatal at startup: the process must not begin polling.
func (s *Settings) Validate() error {
	if s.Source.Query == "" {
		return ErrSearchQueryEmpty
	}
	if s.Telegram.Enabled {
		if s.Telegram.Token == "" {
			return ErrTelegramTokenEmpty
		}
		if len(s.Telegram.Users) == 0 {
			return ErrTelegramUsersEmpty
		}
	}
	return nil
}

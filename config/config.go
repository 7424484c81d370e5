// Package config handles application configuration management using Viper
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raykavin/pairwatch/core"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Default values for optional settings
const (
	defaultPollInterval  = "1m"
	defaultMaxPairAge    = "6h"
	defaultMinLiquidity  = 500.0
	defaultMaxPerCycle   = 10
	defaultDispatchDelay = "3s"

	defaultTrackerStrategy = "memory"
	defaultRetentionMemory = "30m"
	defaultRetentionFile   = "24h"
	defaultEvictInterval   = "5m"
	defaultTrackerPath     = "pairwatch.db"
)

// Load builds the application settings from environment variables, an
// optional .env file and an optional config file. Values from the config
// file act as defaults; environment variables win.
func Load(configPath string) (*core.Settings, error) {
	// Load .env if present (silences error if there is no file)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	settings := &core.Settings{
		Source: core.SourceSettings{
			BaseURL: v.GetString("API_BASE_URL"),
			ChainID: v.GetString("CHAIN_ID"),
			Query:   v.GetString("SEARCH_QUERY"),
		},
		Telegram: core.TelegramSettings{
			Enabled: v.GetBool("TELEGRAM_ENABLED"),
			Token:   v.GetString("TELEGRAM_TOKEN"),
			Users:   parseUsers(v.GetString("TELEGRAM_USERS")),
		},
		Debug: v.GetBool("DEBUG"),
	}

	watcher, err := loadWatcher(v)
	if err != nil {
		return nil, err
	}
	settings.Watcher = watcher

	tracker, err := loadTracker(v)
	if err != nil {
		return nil, err
	}
	settings.Tracker = tracker

	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CHAIN_ID", "solana")
	v.SetDefault("SEARCH_QUERY", "SOL")
	v.SetDefault("POLL_INTERVAL", defaultPollInterval)
	v.SetDefault("MAX_PAIR_AGE", defaultMaxPairAge)
	v.SetDefault("MIN_LIQUIDITY_USD", defaultMinLiquidity)
	v.SetDefault("MAX_PAIRS_PER_CYCLE", defaultMaxPerCycle)
	v.SetDefault("DISPATCH_DELAY", defaultDispatchDelay)
	v.SetDefault("TRACKER_STRATEGY", defaultTrackerStrategy)
	v.SetDefault("TRACKER_EVICT_INTERVAL", defaultEvictInterval)
	v.SetDefault("TRACKER_PATH", defaultTrackerPath)
	v.SetDefault("TELEGRAM_ENABLED", false)
	v.SetDefault("DEBUG", false)
}

func loadWatcher(v *viper.Viper) (core.WatcherSettings, error) {
	pollInterval, err := parseDuration(v, "POLL_INTERVAL")
	if err != nil {
		return core.WatcherSettings{}, err
	}

	maxAge, err := parseDuration(v, "MAX_PAIR_AGE")
	if err != nil {
		return core.WatcherSettings{}, err
	}

	dispatchDelay, err := parseDuration(v, "DISPATCH_DELAY")
	if err != nil {
		return core.WatcherSettings{}, err
	}

	return core.WatcherSettings{
		PollInterval:  pollInterval,
		MaxPairAge:    maxAge,
		MinLiquidity:  v.GetFloat64("MIN_LIQUIDITY_USD"),
		MaxPerCycle:   v.GetInt("MAX_PAIRS_PER_CYCLE"),
		DispatchDelay: dispatchDelay,
	}, nil
}

func loadTracker(v *viper.Viper) (core.TrackerSettings, error) {
	strategy := core.TrackerStrategy(v.GetString("TRACKER_STRATEGY"))
	switch strategy {
	case core.TrackerMemory, core.TrackerFile, core.TrackerBunt:
	default:
		return core.TrackerSettings{}, fmt.Errorf("unknown tracker strategy %q", strategy)
	}

	// The durable strategies default to a much longer retention window.
	if v.GetString("TRACKER_RETENTION") == "" {
		if strategy == core.TrackerMemory {
			v.SetDefault("TRACKER_RETENTION", defaultRetentionMemory)
		} else {
			v.SetDefault("TRACKER_RETENTION", defaultRetentionFile)
		}
	}

	retention, err := parseDuration(v, "TRACKER_RETENTION")
	if err != nil {
		return core.TrackerSettings{}, err
	}

	evictInterval, err := parseDuration(v, "TRACKER_EVICT_INTERVAL")
	if err != nil {
		return core.TrackerSettings{}, err
	}

	return core.TrackerSettings{
		Strategy:      strategy,
		Retention:     retention,
		EvictInterval: evictInterval,
		Path:          v.GetString("TRACKER_PATH"),
	}, nil
}

// parseDuration reads a duration setting in str2duration syntax, which
// also accepts day and week units, e.g. "1d12h".
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q for %s: %w", raw, key, err)
	}
	return d, nil
}

// parseUsers parses a comma separated list of Telegram user IDs.
func parseUsers(raw string) []int64 {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	users := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users
}

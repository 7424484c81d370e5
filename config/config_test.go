package config

import (
	"testing"
	"time"

	"github.com/raykavin/pairwatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "solana", settings.Source.ChainID)
	assert.Equal(t, time.Minute, settings.Watcher.PollInterval)
	assert.Equal(t, 6*time.Hour, settings.Watcher.MaxPairAge)
	assert.Equal(t, 500.0, settings.Watcher.MinLiquidity)
	assert.Equal(t, 10, settings.Watcher.MaxPerCycle)
	assert.Equal(t, 3*time.Second, settings.Watcher.DispatchDelay)
	assert.Equal(t, core.TrackerMemory, settings.Tracker.Strategy)
	assert.Equal(t, 30*time.Minute, settings.Tracker.Retention)
	assert.False(t, settings.Telegram.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAIN_ID", "base")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("MAX_PAIR_AGE", "1d")
	t.Setenv("TRACKER_STRATEGY", "file")
	t.Setenv("TELEGRAM_USERS", "123, 456")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "base", settings.Source.ChainID)
	assert.Equal(t, 30*time.Second, settings.Watcher.PollInterval)
	assert.Equal(t, 24*time.Hour, settings.Watcher.MaxPairAge)
	assert.Equal(t, core.TrackerFile, settings.Tracker.Strategy)
	assert.Equal(t, []int64{123, 456}, settings.Telegram.Users)

	// Durable strategies default to the long retention window.
	assert.Equal(t, 24*time.Hour, settings.Tracker.Retention)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_UnknownTrackerStrategy(t *testing.T) {
	t.Setenv("TRACKER_STRATEGY", "redis")

	_, err := Load("")
	assert.Error(t, err)
}

func TestSettings_Validate(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)
	require.NoError(t, settings.Validate())

	settings.Telegram.Enabled = true
	assert.ErrorIs(t, settings.Validate(), core.ErrTelegramTokenEmpty)

	settings.Telegram.Token = "token"
	assert.ErrorIs(t, settings.Validate(), core.ErrTelegramUsersEmpty)

	settings.Telegram.Users = []int64{1}
	assert.NoError(t, settings.Validate())
}

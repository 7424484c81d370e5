package storage

import (
	"fmt"
	"time"

	"github.com/raykavin/pairwatch/core"
	"github.com/tidwall/buntdb"
)

// BuntStore implements core.Store using BuntDB. Each tracked address is a
// key; the value is the mark instant in RFC3339.
type BuntStore struct {
	db *buntdb.DB
}

// BuntConfig holds configuration options for BuntDB
type BuntConfig struct {
	// SyncPolicy determines how often data is synchronized to disk
	SyncPolicy buntdb.SyncPolicy
}

// DefaultBuntConfig returns the default configuration for BuntDB
func DefaultBuntConfig() BuntConfig {
	return BuntConfig{
		SyncPolicy: buntdb.EverySecond,
	}
}

// NewBuntFromMemory creates an in-memory store with default configuration
func NewBuntFromMemory() (*BuntStore, error) {
	return NewBunt(":memory:", DefaultBuntConfig())
}

// NewBuntFromFile creates a file-based store with default configuration
func NewBuntFromFile(file string) (*BuntStore, error) {
	return NewBunt(file, DefaultBuntConfig())
}

// NewBunt creates a new BuntDB store with the specified configuration
func NewBunt(sourceFile string, config BuntConfig) (*BuntStore, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{
		SyncPolicy: config.SyncPolicy,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure buntdb: %w", err)
	}

	return &BuntStore{db: db}, nil
}

// Load implements core.Store. A value that does not parse as RFC3339 is
// treated as a legacy bare-address record and upgraded with "now" as its
// mark time.
func (b *BuntStore) Load() ([]core.Entry, error) {
	entries := make([]core.Entry, 0)
	now := time.Now()

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			sentAt, err := time.Parse(time.RFC3339, value)
			if err != nil {
				sentAt = now
			}
			entries = append(entries, core.Entry{Address: key, SentAt: sentAt})
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker entries: %w", err)
	}

	return entries, nil
}

// Save implements core.Store. The stored set is replaced as a whole so
// evicted entries disappear from disk.
func (b *BuntStore) Save(entries []core.Entry) error {
	err := b.db.Update(func(tx *buntdb.Tx) error {
		if err := tx.DeleteAll(); err != nil {
			return err
		}
		for _, entry := range entries {
			if _, _, err := tx.Set(entry.Address, entry.SentAt.Format(time.RFC3339), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save tracker entries: %w", err)
	}

	return nil
}

// Close closes the database connection
func (b *BuntStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Package storage provides core.Store implementations for the durable
// tracker.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raykavin/pairwatch/core"
	"github.com/samber/lo"
)

// FileStore persists tracker entries as a JSON file. Two on-disk schemas
// are recognized: the current one, a list of {id, sent_at} objects, and
// the legacy one, a bare list of address strings. Legacy files are
// upgraded on load, every address keeping "now" as its synthetic mark
// time, and rewritten in the current schema.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFile creates a store over the given file path. A missing file loads
// as an empty set.
func NewFile(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Load implements core.Store.
func (f *FileStore) Load() ([]core.Entry, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker file %q: %w", f.path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var entries []core.Entry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	// Legacy schema: a bare list of addresses.
	var addresses []string
	if err := json.Unmarshal(data, &addresses); err != nil {
		return nil, fmt.Errorf("failed to decode tracker file %q: %w", f.path, err)
	}

	now := f.now()
	entries = lo.Map(addresses, func(address string, _ int) core.Entry {
		return core.Entry{Address: address, SentAt: now}
	})

	if err := f.Save(entries); err != nil {
		return nil, fmt.Errorf("failed to upgrade legacy tracker file: %w", err)
	}

	return entries, nil
}

// Save implements core.Store. The file is replaced atomically: a rename
// over a temp file, never a partial write.
func (f *FileStore) Save(entries []core.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tracker entries: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp tracker file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write tracker file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close tracker file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace tracker file: %w", err)
	}

	return nil
}

// Close implements core.Store.
func (f *FileStore) Close() error {
	return nil
}

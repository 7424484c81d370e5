// Package tracker maintains the set of already-notified pair addresses
// with an expiry policy.
package tracker

import (
	"sync"
	"time"
)

// Memory is a volatile tracker. State is lost on restart, which is
// acceptable with a short freshness window: stale re-sends are
// self-limiting.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	retention time.Duration
}

// NewMemory creates a tracker that forgets entries after the retention
// window.
func NewMemory(retention time.Duration) *Memory {
	return &Memory{
		entries:   make(map[string]time.Time),
		retention: retention,
	}
}

// Has implements core.Tracker.
func (m *Memory) Has(address string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[address]
	return ok
}

// Mark implements core.Tracker. Marking is idempotent: a second mark for
// the same address only refreshes its instant.
func (m *Memory) Mark(address string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[address] = now
}

// Evict implements core.Tracker. An entry marked at T survives until
// exactly T plus the retention window and is removed strictly after it.
func (m *Memory) Evict(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for address, sentAt := range m.entries {
		if now.Sub(sentAt) > m.retention {
			delete(m.entries, address)
			removed++
		}
	}
	return removed
}

// Count implements core.Tracker.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close implements core.Tracker. The memory tracker has nothing to flush.
func (m *Memory) Close() error {
	return nil
}

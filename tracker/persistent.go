package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/raykavin/pairwatch/core"
)

// Persistent is a durable tracker backed by a core.Store. State is loaded
// on construction and written back on every mark. Store failures are
// logged and degrade to the in-memory state; the worst case is a
// duplicate notification, never a crash.
type Persistent struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	retention time.Duration
	store     core.Store
	log       core.Logger
}

// NewPersistent creates a tracker over the given store. A load failure
// starts the tracker empty.
func NewPersistent(store core.Store, retention time.Duration, log core.Logger) *Persistent {
	t := &Persistent{
		entries:   make(map[string]time.Time),
		retention: retention,
		store:     store,
		log:       log,
	}

	entries, err := store.Load()
	if err != nil {
		log.WithError(err).Error("failed to load tracker state, starting empty")
		return t
	}

	for _, entry := range entries {
		t.entries[entry.Address] = entry.SentAt
	}

	if len(t.entries) > 0 {
		log.WithField("entries", len(t.entries)).Info("tracker state loaded")
	}

	return t
}

// Has implements core.Tracker.
func (p *Persistent) Has(address string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[address]
	return ok
}

// Mark implements core.Tracker and persists the updated set.
func (p *Persistent) Mark(address string, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[address] = now
	p.flushLocked()
}

// Evict implements core.Tracker. The set is rewritten only when entries
// were actually removed.
func (p *Persistent) Evict(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for address, sentAt := range p.entries {
		if now.Sub(sentAt) > p.retention {
			delete(p.entries, address)
			removed++
		}
	}

	if removed > 0 {
		p.flushLocked()
	}
	return removed
}

// Count implements core.Tracker.
func (p *Persistent) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Close flushes the current state and closes the store.
func (p *Persistent) Close() error {
	p.mu.Lock()
	p.flushLocked()
	p.mu.Unlock()
	return p.store.Close()
}

// flushLocked writes the current set to the store. Callers must hold mu.
func (p *Persistent) flushLocked() {
	entries := make([]core.Entry, 0, len(p.entries))
	for address, sentAt := range p.entries {
		entries = append(entries, core.Entry{Address: address, SentAt: sentAt})
	}

	// Oldest first, address as tie breaker, so the file is stable.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SentAt.Equal(entries[j].SentAt) {
			return entries[i].Address < entries[j].Address
		}
		return entries[i].SentAt.Before(entries[j].SentAt)
	})

	if err := p.store.Save(entries); err != nil {
		p.log.WithError(err).Error("failed to persist tracker state")
	}
}

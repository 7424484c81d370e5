package core

import (
	"context"
	"time"
)

// Source supplies raw pair snapshots from the upstream market-data API.
type Source interface {
	FetchPairs(ctx context.Context) ([]Pair, error)
}

// Notifier delivers pair notifications to an external channel.
// OnPair returns true when the notification for the pair was delivered;
// expected delivery failures are reported through the boolean, not an error.
type Notifier interface {
	Notify(text string)
	OnPair(pair Pair, seq int) bool
	OnError(err error)
}

// NotifierWithStart is a notifier that needs its own polling loop,
// such as the Telegram bot.
type NotifierWithStart interface {
	Notifier
	Start()
}

// Tracker maintains the set of already-notified pair addresses with an
// expiry policy. Implementations must be safe for concurrent use: the
// eviction loop interleaves with Has and Mark calls from the watcher.
type Tracker interface {
	// Has reports whether an unexpired entry for the address exists.
	Has(address string) bool

	// Mark records the address as notified at the given instant.
	// Marking an already-tracked address overwrites its instant.
	Mark(address string, now time.Time)

	// Evict removes all entries older than the retention window and
	// returns the number removed.
	Evict(now time.Time) int

	// Count returns the number of currently tracked entries.
	Count() int

	// Close flushes any persisted state.
	Close() error
}

// Entry is a tracker record: an address and the instant it was notified.
type Entry struct {
	Address string    `json:"id"`
	SentAt  time.Time `json:"sent_at"`
}

// Store persists tracker entries between runs. Load must recognize the
// legacy on-disk schema (a bare list of address strings) and upgrade it.
type Store interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
	Close() error
}

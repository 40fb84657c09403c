// Package ledger tracks which signal keys have already been reported, so a
// qualifying bar is notified exactly once across repeated runs.
//
// A ledger is loaded fully into memory at startup and committed in one append
// per cycle. An absent backing store means an empty ledger (first run); a
// store that exists but cannot be read is a fatal startup error — proceeding
// with an empty set would re-send the entire history.
package ledger

// Ledger is the deduplication set for signal keys.
type Ledger interface {
	// Seen reports whether a key has been recorded in this or any previous
	// process lifetime.
	Seen(key string) bool

	// Record marks a key as sent in memory. Idempotent. The key becomes
	// durable on the next Commit.
	Record(key string)

	// Commit appends all keys recorded since the last Commit to the backing
	// store.
	Commit() error

	// Len returns the number of distinct keys held.
	Len() int

	Close() error
}

package push

import (
	"sync"
	"time"

	"github.com/dialview/icws-monitor/internal/types"
)

// Ledger tracks which interactions have been handed to the BI sink, keyed by
// interaction id. Shared between the tick goroutine (enqueue) and the push
// worker (collect), so it carries its own lock.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]types.PushLedgerEntry
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]types.PushLedgerEntry)}
}

// Record creates or overwrites the entry for id unless it is already marked
// pushed. Returns the entry and whether it was (re)created.
func (l *Ledger) Record(id string, now time.Time) (types.PushLedgerEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.entries[id]; ok && cur.IsPushed {
		return cur, false
	}
	entry := types.PushLedgerEntry{InteractionID: id, DateAdded: now, IsPushed: false}
	l.entries[id] = entry
	return entry, true
}

// MarkPushed flips the pushed marker for the given ids
func (l *Ledger) MarkPushed(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if entry, ok := l.entries[id]; ok {
			entry.IsPushed = true
			l.entries[id] = entry
		}
	}
}

// Get returns the entry for id
func (l *Ledger) Get(id string) (types.PushLedgerEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[id]
	return entry, ok
}

// Len returns the number of ledger entries
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RemoveOlderThan drops entries added before the cutoff and returns the count
func (l *Ledger) RemoveOlderThan(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, entry := range l.entries {
		if entry.DateAdded.Before(cutoff) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

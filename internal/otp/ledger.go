// Package otp keeps pending password-reset codes in process memory.
package otp

import (
	"context"
	"sync"
	"time"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
)

// Ledger maps an email to its single pending code. A Put for an email that
// already has a code replaces it, so concurrent requests are last-write-wins.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]domain.OTPEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]domain.OTPEntry)}
}

func (l *Ledger) Put(email string, entry domain.OTPEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[email] = entry
}

// Get returns the pending entry even when it has already expired; callers
// decide how to report expiry.
func (l *Ledger) Get(email string) (domain.OTPEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[email]
	return entry, ok
}

func (l *Ledger) Delete(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, email)
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep drops every entry that expired before cutoff and returns how many
// were removed.
func (l *Ledger) Sweep(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for email, entry := range l.entries {
		if entry.ExpiresAt.Before(cutoff) {
			delete(l.entries, email)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done. Entries are kept for one extra
// interval past expiry so a late reset attempt still reports the code as
// expired rather than missing. A non-positive interval disables sweeping.
func (l *Ledger) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := l.Sweep(now.Add(-interval))
			if onSweep != nil && removed > 0 {
				onSweep(removed)
			}
		}
	}
}

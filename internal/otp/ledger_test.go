package otp

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/auth/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_PutGetDelete(t *testing.T) {
	l := NewLedger()
	expires := time.Now().Add(15 * time.Minute)

	_, ok := l.Get("a@x.com")
	assert.False(t, ok)

	l.Put("a@x.com", domain.OTPEntry{Code: "123456", ExpiresAt: expires})

	entry, ok := l.Get("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "123456", entry.Code)
	assert.Equal(t, expires, entry.ExpiresAt)

	l.Delete("a@x.com")
	_, ok = l.Get("a@x.com")
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}

func TestLedger_PutOverwrites(t *testing.T) {
	l := NewLedger()
	l.Put("a@x.com", domain.OTPEntry{Code: "111111", ExpiresAt: time.Now()})
	l.Put("a@x.com", domain.OTPEntry{Code: "222222", ExpiresAt: time.Now().Add(time.Minute)})

	entry, ok := l.Get("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "222222", entry.Code)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_GetKeepsExpiredEntries(t *testing.T) {
	l := NewLedger()
	past := time.Now().Add(-time.Hour)
	l.Put("a@x.com", domain.OTPEntry{Code: "123456", ExpiresAt: past})

	entry, ok := l.Get("a@x.com")
	require.True(t, ok)
	assert.True(t, entry.Expired(time.Now()))
}

func TestLedger_Sweep(t *testing.T) {
	l := NewLedger()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	l.Put("old@x.com", domain.OTPEntry{Code: "100000", ExpiresAt: now.Add(-time.Minute)})
	l.Put("edge@x.com", domain.OTPEntry{Code: "100001", ExpiresAt: now})
	l.Put("fresh@x.com", domain.OTPEntry{Code: "100002", ExpiresAt: now.Add(time.Minute)})

	removed := l.Sweep(now)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, l.Len())
	_, ok := l.Get("old@x.com")
	assert.False(t, ok)
	_, ok = l.Get("edge@x.com")
	assert.True(t, ok)
}

func TestLedger_RunStopsOnCancel(t *testing.T) {
	l := NewLedger()
	l.Put("old@x.com", domain.OTPEntry{Code: "100000", ExpiresAt: time.Now().Add(-time.Hour)})

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 1)
	done := make(chan struct{})

	go func() {
		l.Run(ctx, 10*time.Millisecond, func(removed int) {
			select {
			case swept <- removed:
			default:
			}
		})
		close(done)
	}()

	select {
	case removed := <-swept:
		assert.Equal(t, 1, removed)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
	assert.Equal(t, 0, l.Len())
}

func TestLedger_RunNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		t.Run(interval.String(), func(t *testing.T) {
			l := NewLedger()
			l.Put("old@x.com", domain.OTPEntry{Code: "100000", ExpiresAt: time.Now().Add(-time.Hour)})

			// The context is never cancelled, so Run must return on its own.
			done := make(chan struct{})
			go func() {
				defer close(done)
				assert.NotPanics(t, func() {
					l.Run(context.Background(), interval, func(int) {
						t.Error("sweep must not run")
					})
				})
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return for a non-positive interval")
			}
			assert.Equal(t, 1, l.Len())
		})
	}
}

func TestLedger_ConcurrentAccess(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", i%5)
			l.Put(email, domain.OTPEntry{Code: fmt.Sprintf("%06d", 100000+i), ExpiresAt: time.Now().Add(time.Minute)})
			l.Get(email)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, l.Len())
}

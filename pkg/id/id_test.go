package id

import (
	"sync"
	"testing"
	"time"
)

func withFixedClock(t *testing.T, ms int64) *int64 {
	t.Helper()
	cur := ms
	NowMs = func() int64 { return cur }
	t.Cleanup(func() { NowMs = func() int64 { return time.Now().UnixMilli() } })
	return &cur
}

func TestNextIsMonotonicWithinOneMs(t *testing.T) {
	withFixedClock(t, 1000)
	g := NewGenerator()

	prev := g.Next()
	for i := 0; i < 100; i++ {
		next := g.Next()
		if prev.Compare(next) >= 0 {
			t.Fatalf("id %d not greater than predecessor: %s <= %s", i, next, prev)
		}
		prev = next
	}
}

func TestStringIsSortableHex(t *testing.T) {
	clock := withFixedClock(t, 1000)
	g := NewGenerator()

	a := g.Next().String()
	*clock = 2000
	b := g.Next().String()

	if len(a) != 32 || len(b) != 32 {
		t.Fatalf("want 32 hex chars, got %d and %d", len(a), len(b))
	}
	if !(a < b) {
		t.Fatalf("hex form must sort with time: %s >= %s", a, b)
	}
}

func TestClockRegressionNeverReordersIDs(t *testing.T) {
	clock := withFixedClock(t, 1000)
	g := NewGenerator()

	a := g.Next()
	*clock = 900
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("id order broke across clock regression")
	}
}

func TestSequenceOverflowWaitsForNextMs(t *testing.T) {
	clock := withFixedClock(t, 2000)
	g := NewGenerator()
	g.lastMs = 2000
	g.sequence = ^uint64(0) - 1

	_ = g.Next() // lands on the max sequence

	done := make(chan ID, 1)
	go func() { done <- g.Next() }()

	time.AfterFunc(10*time.Millisecond, func() { *clock = 2001 })

	select {
	case got := <-done:
		if got[15] != 0 {
			t.Fatalf("sequence did not reset after rollover: %v", got)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("Next did not return after the clock advanced")
	}
}

func TestConcurrentNextIsUnique(t *testing.T) {
	g := NewGenerator()
	const workers, per = 8, 200

	var mu sync.Mutex
	seen := make(map[string]bool, workers*per)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				s := g.Next().String()
				mu.Lock()
				if seen[s] {
					mu.Unlock()
					t.Errorf("duplicate id %s", s)
					return
				}
				seen[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

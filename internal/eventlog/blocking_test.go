package eventlog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestWaitForNewFastPath(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 2)

	start := time.Now()
	items, timedOut, err := l.WaitForNew(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if timedOut {
		t.Fatalf("timed out with data available")
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("fast path blocked: %v", time.Since(start))
	}
}

func TestWaitForNewWakesOnAppend(t *testing.T) {
	l := newTestLog(t)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_, _ = l.Append(context.Background(), []AppendRecord{{Payload: []byte("late")}})
	}()

	items, timedOut, err := l.WaitForNew(context.Background(), 0, 5*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if timedOut {
		t.Fatalf("timed out instead of waking")
	}
	if len(items) != 1 || string(items[0].Payload) != "late" {
		t.Fatalf("items=%v", items)
	}
}

func TestWaitForNewTimesOut(t *testing.T) {
	l := newTestLog(t)
	fill(t, l, 1)

	start := time.Now()
	items, timedOut, err := l.WaitForNew(context.Background(), 1, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !timedOut || items != nil {
		t.Fatalf("want timeout with no items, got timedOut=%v items=%v", timedOut, items)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("returned before deadline: %v", elapsed)
	}
}

func TestWaitForNewHonorsContext(t *testing.T) {
	l := newTestLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, _, err := l.WaitForNew(ctx, 0, 5*time.Second)
	if err != context.Canceled {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

// Appends race against waiters registering. Every waiter must observe every
// message eventually; a lost wakeup shows up as a timeout here.
func TestWaitForNewNoLostWakeups(t *testing.T) {
	l := newTestLog(t)
	const waiters = 8
	const messages = 40

	var wg sync.WaitGroup
	errs := make(chan error, waiters)
	for w := 0; w < waiters; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			cursor := uint64(0)
			for cursor < messages {
				items, timedOut, err := l.WaitForNew(context.Background(), cursor, 5*time.Second)
				if err != nil {
					errs <- fmt.Errorf("waiter %d: %v", w, err)
					return
				}
				if timedOut {
					errs <- fmt.Errorf("waiter %d: lost wakeup at cursor %d", w, cursor)
					return
				}
				for _, it := range items {
					if it.Seq != cursor+1 {
						errs <- fmt.Errorf("waiter %d: gap, want %d got %d", w, cursor+1, it.Seq)
						return
					}
					cursor = it.Seq
				}
			}
		}(w)
	}

	for i := 0; i < messages; i++ {
		if _, err := l.Append(context.Background(), []AppendRecord{{Payload: []byte("m")}}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestWaitForAppend(t *testing.T) {
	l := newTestLog(t)

	if l.WaitForAppend(context.Background(), 30*time.Millisecond) {
		t.Fatalf("woke with no append")
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = l.Append(context.Background(), []AppendRecord{{Payload: []byte("x")}})
	}()
	if !l.WaitForAppend(context.Background(), 5*time.Second) {
		t.Fatalf("missed append")
	}
}

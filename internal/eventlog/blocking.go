package eventlog

import (
	"context"
	"time"
)

// WaitForNew blocks until items with Seq > cursor exist, the timeout
// elapses, or ctx is cancelled. It returns (items, false, nil) when woken
// with data, (nil, true, nil) on timeout, and (nil, false, ctx.Err()) on
// cancellation.
//
// The empty read and the capture of the notify channel happen under the
// same mutex Append holds while committing and swapping the channel, so an
// append can never slip between the check and the sleep unobserved. A woken
// waiter re-reads and receives every item past its cursor, not just the
// first.
func (l *Log) WaitForNew(ctx context.Context, cursor uint64, timeout time.Duration) ([]Item, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		l.mu.Lock()
		items := l.readSinceLocked(cursor, 0)
		ch := l.notifyCh
		l.mu.Unlock()

		if len(items) > 0 {
			return items, false, nil
		}

		select {
		case <-ch:
			// version advanced; loop and re-read
		case <-timer.C:
			return nil, true, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// WaitForAppend blocks until a new append occurs or timeout elapses.
// It returns true if woken by an append, false on timeout or cancellation.
func (l *Log) WaitForAppend(ctx context.Context, timeout time.Duration) bool {
	l.mu.Lock()
	ch := l.notifyCh
	l.mu.Unlock()

	if timeout <= 0 {
		select {
		case <-ch:
			return true
		case <-ctx.Done():
			return false
		}
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	case <-ctx.Done():
		return false
	}
}

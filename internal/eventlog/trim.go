package eventlog

import (
	"context"
	"time"

	"github.com/cockroachdb/pebble"
)

// TrimHook observes ranges of sequences removed by retention trims.
type TrimHook interface {
	// EmitTrimRange reports a best-effort contiguous [minSeq, maxSeq]
	// range deleted in one batch.
	EmitTrimRange(topic string, minSeq, maxSeq uint64)
}

type noopTrimHook struct{}

func (noopTrimHook) EmitTrimRange(string, uint64, uint64) {}

// SetTrimHook installs a hook observing trim ranges. Nil restores the no-op.
func (l *Log) SetTrimHook(h TrimHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h == nil {
		h = noopTrimHook{}
	}
	l.trimHook = h
}

// TrimOlderThan deletes entries whose produced-at timestamp is older than
// cutoffMs. Deletes commit in batches of up to batchLimit keys with an
// optional throttle between commits. Returns the number of deleted entries
// and the last deleted sequence (0 if none). Trimming is an operator
// feature: cursors past the trimmed range are unaffected, and stale cursors
// simply resume at the first retained entry.
func (l *Log) TrimOlderThan(ctx context.Context, cutoffMs int64, batchLimit int, throttle time.Duration) (int, uint64, error) {
	if batchLimit <= 0 {
		batchLimit = 1024
	}

	low, hi := entryBounds(l.topic)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return 0, 0, err
	}
	defer iter.Close()

	deleted := 0
	var lastSeq uint64
	for ok := iter.First(); ok; {
		b := l.db.NewBatch()
		var minSeq uint64
		n := 0
		for ok && n < batchLimit {
			seq := seqFromEntryKey(iter.Key())
			dec, okDec := DecodeRecord(iter.Value())
			if !okDec || ProducedAtFromHeader(dec.Header) >= cutoffMs {
				// entries are time-ordered; the first retained entry ends the scan
				ok = false
				break
			}
			if err := b.Delete(iter.Key(), nil); err != nil {
				b.Close()
				return deleted, lastSeq, err
			}
			if n == 0 {
				minSeq = seq
			}
			deleted++
			lastSeq = seq
			n++
			ok = iter.Next()
		}
		if n == 0 {
			b.Close()
			break
		}
		if err := l.db.CommitBatch(ctx, b); err != nil {
			b.Close()
			return deleted, lastSeq, err
		}
		b.Close()
		l.trimHook.EmitTrimRange(l.topic, minSeq, lastSeq)
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}
	return deleted, lastSeq, nil
}

// TrimToMaxBytes deletes the oldest entries until the topic's total stored
// bytes fall under maxBytes (approximate, value bytes only). Returns the
// number of deleted entries.
func (l *Log) TrimToMaxBytes(ctx context.Context, maxBytes int64, batchLimit int, throttle time.Duration) (int, error) {
	if maxBytes <= 0 {
		return 0, nil
	}
	if batchLimit <= 0 {
		batchLimit = 1024
	}

	low, hi := entryBounds(l.topic)

	// First pass: total size.
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return 0, err
	}
	var total int64
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		total += int64(len(iter.Value()))
	}
	iter.Close()
	if total <= maxBytes {
		return 0, nil
	}

	// Second pass: delete oldest-first until under budget.
	iter, err = l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	deleted := 0
	for ok := iter.First(); ok && total > maxBytes; {
		b := l.db.NewBatch()
		var minSeq, lastSeq uint64
		n := 0
		for ok && n < batchLimit && total > maxBytes {
			seq := seqFromEntryKey(iter.Key())
			if err := b.Delete(iter.Key(), nil); err != nil {
				b.Close()
				return deleted, err
			}
			if n == 0 {
				minSeq = seq
			}
			lastSeq = seq
			total -= int64(len(iter.Value()))
			deleted++
			n++
			ok = iter.Next()
		}
		if n == 0 {
			b.Close()
			break
		}
		if err := l.db.CommitBatch(ctx, b); err != nil {
			b.Close()
			return deleted, err
		}
		b.Close()
		l.trimHook.EmitTrimRange(l.topic, minSeq, lastSeq)
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}
	return deleted, nil
}

package eventlog

import (
	"github.com/cockroachdb/pebble"
)

// ReadSince returns, in ascending sequence order, up to limit items with
// Seq > cursor. A limit of 0 means no limit. It never blocks and never
// mutates state. A cursor beyond the current last sequence is treated as 0:
// a stale or invalid position cannot corrupt an append-only log, so the
// caller is simply replayed from the start.
func (l *Log) ReadSince(cursor uint64, limit int) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readSinceLocked(cursor, limit)
}

// readSinceLocked is the shared snapshot read used by ReadSince and
// WaitForNew. Caller must hold l.mu.
func (l *Log) readSinceLocked(cursor uint64, limit int) []Item {
	if cursor > l.lastSeq {
		cursor = 0
	}
	if cursor >= l.lastSeq {
		return nil
	}

	low, hi := entryBounds(l.topic)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return nil
	}
	defer iter.Close()

	var items []Item
	start := KeyLogEntry(l.topic, cursor+1)
	for ok := iter.SeekGE(start); ok && iter.Valid(); ok = iter.Next() {
		if limit > 0 && len(items) >= limit {
			break
		}
		seq := seqFromEntryKey(iter.Key())
		dec, okDec := DecodeRecord(iter.Value())
		if !okDec {
			continue
		}
		items = append(items, Item{
			Seq:          seq,
			Payload:      dec.Payload,
			Headers:      HeadersFromHeader(dec.Header),
			ProducedAtMs: ProducedAtFromHeader(dec.Header),
		})
	}
	return items
}

// ReadLast returns up to n of the newest items in ascending order. Used by
// the plain-poll transport's "last N" view; the log itself is not truncated.
func (l *Log) ReadLast(n int) []Item {
	if n <= 0 {
		return nil
	}
	low, hi := entryBounds(l.topic)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return nil
	}
	defer iter.Close()

	var reversed []Item
	for ok := iter.Last(); ok && iter.Valid() && len(reversed) < n; ok = iter.Prev() {
		seq := seqFromEntryKey(iter.Key())
		dec, okDec := DecodeRecord(iter.Value())
		if !okDec {
			continue
		}
		reversed = append(reversed, Item{
			Seq:          seq,
			Payload:      dec.Payload,
			Headers:      HeadersFromHeader(dec.Header),
			ProducedAtMs: ProducedAtFromHeader(dec.Header),
		})
	}
	// flip to ascending
	items := make([]Item, len(reversed))
	for i := range reversed {
		items[len(reversed)-1-i] = reversed[i]
	}
	return items
}

// FirstSeq returns the lowest stored sequence, 0 when the log is empty or
// fully trimmed.
func (l *Log) FirstSeq() uint64 {
	low, hi := entryBounds(l.topic)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	if err != nil {
		return 0
	}
	defer iter.Close()
	if !iter.First() {
		return 0
	}
	return seqFromEntryKey(iter.Key())
}

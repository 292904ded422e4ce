// Package eventlog implements beacon's append-only event log: the single
// source of truth for what has happened on a topic.
//
// # Overview
//
// Each topic has one Log persisted in Pebble. Keys are lexicographically
// ordered for efficient range scans:
//   - t/{topic}/m            (log metadata: lastSeq)
//   - t/{topic}/e/{seq_be8}  (entries)
//   - t/{topic}/c/{group}    (durable consumer-group cursors)
//
// Records are stored as: varint headerLen | header | payload |
// crc32c(header|payload). The header carries the produced-at timestamp
// (8 bytes big-endian ms) plus optional JSON user headers.
//
// Sequences are strictly increasing by 1 starting at 1: no gaps, no
// duplicates, no reordering. Append is the only mutator and is mutually
// exclusive with the snapshot reads taken by ReadSince and WaitForNew.
//
// # Wait gate
//
// Every append bumps a version counter and swaps a notify channel inside
// the append critical section. WaitForNew captures the channel under the
// same mutex as its empty read, which makes check-then-sleep atomic with
// respect to concurrent appends (no lost wakeups). Timeouts are normal
// outcomes, not errors; cancellation via context returns promptly.
//
// # API surface (internal)
//
//	l, _ := OpenLog(db, "events")
//	items, _ := l.Append(ctx, []AppendRecord{{Payload: p}})
//
//	// Non-blocking reads
//	newer := l.ReadSince(cursor, 0)
//	lastN := l.ReadLast(5)
//
//	// Bounded wait for new data
//	items, timedOut, err := l.WaitForNew(ctx, cursor, 30*time.Second)
//
//	// Durable consumer cursor commits (idempotent, no regression)
//	_ = l.CommitCursor("groupA", items[len(items)-1].Seq)
//
//	// Retention trims (approximate, batched, throttled)
//	_, _, _ = l.TrimOlderThan(ctx, cutoffMs, 1024, 0)
//	_, _ = l.TrimToMaxBytes(ctx, maxBytes, 1024, 0)
//
// A TrimHook seam lets the server log trimmed ranges; the default is a no-op.
package eventlog

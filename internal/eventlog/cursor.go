package eventlog

import (
	"encoding/binary"
)

// CommitCursor durably records the last acknowledged sequence for a consumer
// group. Commits are idempotent and never regress: committing a sequence at
// or below the stored one is a no-op.
func (l *Log) CommitCursor(group string, seq uint64) error {
	key := KeyCursor(l.topic, group)
	cur, err := l.db.Get(key)
	if err == nil && len(cur) >= 8 {
		prev := binary.BigEndian.Uint64(cur[:8])
		if seq <= prev {
			return nil
		}
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return l.db.Set(key, b[:])
}

// GetCursor loads the stored cursor for a consumer group. The second return
// is false when the group has never committed.
func (l *Log) GetCursor(group string) (uint64, bool) {
	cur, err := l.db.Get(KeyCursor(l.topic, group))
	if err != nil || len(cur) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(cur[:8]), true
}

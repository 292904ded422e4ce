package eventlog

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - t/{topic}/m              (topic log metadata: lastSeq)
// - t/{topic}/e/{seq_be8}    (entries)
// - t/{topic}/c/{group}      (durable group cursors)

var (
	topicPrefix = []byte("t/")
	metaSuffix  = []byte("/m")
	entrySeg    = []byte("/e/")
	cursorSeg   = []byte("/c/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyLogMeta builds the log metadata key for a topic.
func KeyLogMeta(topic string) []byte {
	k := make([]byte, 0, len(topic)+8)
	k = append(k, topicPrefix...)
	k = append(k, topic...)
	k = append(k, metaSuffix...)
	return k
}

// KeyLogEntry builds the entry key with a big-endian sequence for ordering.
func KeyLogEntry(topic string, seq uint64) []byte {
	k := make([]byte, 0, len(topic)+16)
	k = append(k, topicPrefix...)
	k = append(k, topic...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

// KeyCursor builds the durable cursor key for a consumer group.
func KeyCursor(topic, group string) []byte {
	k := make([]byte, 0, len(topic)+len(group)+8)
	k = append(k, topicPrefix...)
	k = append(k, topic...)
	k = append(k, cursorSeg...)
	k = append(k, group...)
	return k
}

// entryBounds returns the [low, high) iterator bounds covering every entry
// key of the topic.
func entryBounds(topic string) (low, hi []byte) {
	low = KeyLogEntry(topic, 0)
	hi = append(KeyLogEntry(topic, ^uint64(0)), 0x00)
	return low, hi
}

// seqFromEntryKey extracts the sequence from an entry key. Keys too short
// to carry a sequence yield 0, which no stored entry ever uses.
func seqFromEntryKey(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

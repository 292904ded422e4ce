package eventlog

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	pebblestore "github.com/beaconhq/beacon/internal/storage/pebble"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("event not found")

// ErrInvalidTopic is returned for topic names the keyspace cannot hold.
var ErrInvalidTopic = errors.New("invalid topic name")

// MaxTopicLen caps topic name length.
const MaxTopicLen = 128

// ValidateTopic rejects names that would collide in the keyspace. Keys use
// '/' as a segment separator, so topic names must not contain it.
func ValidateTopic(name string) error {
	if name == "" || len(name) > MaxTopicLen {
		return ErrInvalidTopic
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '/' || c < 0x20 || c == 0x7f {
			return ErrInvalidTopic
		}
	}
	return nil
}

// AppendRecord is a single appendable event. The payload is opaque to the
// log; headers are optional user metadata stored alongside the timestamp.
type AppendRecord struct {
	Payload []byte
	Headers map[string]string
}

// Item is one stored event handed to consumers. Consumers receive copies;
// the log retains ownership of the stored bytes.
type Item struct {
	Seq          uint64
	Payload      []byte
	Headers      map[string]string
	ProducedAtMs int64
}

// Log provides append-only operations for a single topic backed by Pebble.
// Appends are the only mutation; the version counter and the notify channel
// implement the wait gate consumed by WaitForNew.
type Log struct {
	db    *pebblestore.DB
	topic string

	mu       sync.Mutex
	lastSeq  uint64
	version  uint64
	notifyCh chan struct{}
	trimHook TrimHook
}

// NowMs returns current time in milliseconds. Replaceable in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// OpenLog initializes a Log, restoring the last sequence from metadata.
func OpenLog(db *pebblestore.DB, topic string) (*Log, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}
	l := &Log{db: db, topic: topic, notifyCh: make(chan struct{}), trimHook: noopTrimHook{}}
	meta, err := db.Get(KeyLogMeta(topic))
	if err == nil && len(meta) >= 8 {
		l.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	return l, nil
}

// Topic returns the topic name this log serves.
func (l *Log) Topic() string { return l.topic }

// Append stores the provided records as a single atomic batch, assigns
// strictly increasing sequence numbers starting at 1, and wakes all blocked
// waiters. The version bump and waiter notification happen inside the
// critical section so a waiter can never observe the bump before the items
// are readable.
func (l *Log) Append(ctx context.Context, recs []AppendRecord) ([]Item, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewBatch()
	defer b.Close()

	base := l.lastSeq
	now := NowMs()
	items := make([]Item, len(recs))
	for i, r := range recs {
		l.lastSeq++
		seq := l.lastSeq
		header := EncodeHeader(now, r.Headers)
		if err := b.Set(KeyLogEntry(l.topic, seq), EncodeRecord(header, r.Payload), nil); err != nil {
			l.lastSeq = base
			return nil, err
		}
		items[i] = Item{
			Seq:          seq,
			Payload:      append([]byte(nil), r.Payload...),
			Headers:      r.Headers,
			ProducedAtMs: now,
		}
	}

	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], l.lastSeq)
	if err := b.Set(KeyLogMeta(l.topic), meta[:], nil); err != nil {
		l.lastSeq = base
		return nil, err
	}

	if err := l.db.CommitBatch(ctx, b); err != nil {
		l.lastSeq = base
		return nil, err
	}

	l.version++
	close(l.notifyCh)
	l.notifyCh = make(chan struct{})
	return items, nil
}

// LastSeq returns the highest assigned sequence number.
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeq
}

// Version returns the wait-gate version counter, bumped once per append batch.
func (l *Log) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

package notifysvc

import (
	"context"
)

// SubscribeItem represents a delivered event for streaming transports.
type SubscribeItem struct {
	Seq          uint64
	Payload      []byte
	Headers      map[string]string
	ProducedAtMs int64
}

// SubscribeSink is implemented by transports to receive streamed items.
type SubscribeSink interface {
	Send(SubscribeItem) error
	Context() context.Context
	Flush() error
}

// SubscribeOptions controls starting position and filtering for Subscribe.
type SubscribeOptions struct {
	// Cursor is the last sequence the consumer has already seen. Events with
	// seq > Cursor are delivered. Replay is ReplayLast when Cursor is 0.
	Cursor uint64
	// ReplayLast delivers the newest N stored events before going live when
	// Cursor is 0. Negative disables replay.
	ReplayLast int
	// Filter is an optional CEL expression evaluated per event. Empty
	// delivers everything.
	Filter string
	// Limit stops delivery after this many events. 0 means unlimited.
	Limit int
	// Buffer overrides the per-subscriber channel capacity when > 0.
	Buffer int
}

// WaitResult is the outcome of a bounded long-poll wait.
type WaitResult struct {
	Items    []SubscribeItem
	TimedOut bool
	Cursor   uint64
}

// TopicStats summarizes one topic for the stats endpoint.
type TopicStats struct {
	Topic       string `json:"topic"`
	FirstSeq    uint64 `json:"first_seq"`
	LastSeq     uint64 `json:"last_seq"`
	Subscribers int    `json:"subscribers"`
}

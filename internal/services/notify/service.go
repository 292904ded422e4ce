package notifysvc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beaconhq/beacon/internal/eventlog"
	"github.com/beaconhq/beacon/internal/fanout"
	"github.com/beaconhq/beacon/internal/runtime"
	logpkg "github.com/beaconhq/beacon/pkg/log"
)

// ErrPayloadTooLarge rejects publishes above the configured payload cap.
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrSlowConsumer ends a subscribe whose buffer overflowed.
var ErrSlowConsumer = errors.New("subscriber too slow")

// Service is the event-delivery facade shared by all transports. Publishes
// append to the topic log and fan out to live subscribers; reads and waits
// go straight to the log so every transport observes the same sequences.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger

	mu         sync.Mutex
	registries map[string]*fanout.Registry
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("notify"))
	}
	return &Service{rt: rt, logger: logger, registries: make(map[string]*fanout.Registry)}
}

func (s *Service) registry(topic string) *fanout.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registries[topic]
	if !ok {
		r = fanout.NewRegistry()
		s.registries[topic] = r
	}
	return r
}

func toSubscribeItem(it eventlog.Item) SubscribeItem {
	return SubscribeItem{
		Seq:          it.Seq,
		Payload:      it.Payload,
		Headers:      it.Headers,
		ProducedAtMs: it.ProducedAtMs,
	}
}

func toSubscribeItems(items []eventlog.Item) []SubscribeItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]SubscribeItem, len(items))
	for i, it := range items {
		out[i] = toSubscribeItem(it)
	}
	return out
}

// Publish appends one event to the topic log and pushes it to every live
// subscriber. Subscribers that cannot keep up are dropped.
func (s *Service) Publish(ctx context.Context, topic string, payload []byte, headers map[string]string) (SubscribeItem, error) {
	t0 := time.Now()
	if max := s.rt.Config().PayloadMaxBytes; max > 0 && len(payload) > max {
		return SubscribeItem{}, ErrPayloadTooLarge
	}
	if _, err := s.rt.EnsureTopic(topic); err != nil {
		return SubscribeItem{}, err
	}
	l, err := s.rt.OpenLog(topic)
	if err != nil {
		return SubscribeItem{}, err
	}
	items, err := l.Append(ctx, []eventlog.AppendRecord{{Payload: payload, Headers: headers}})
	if err != nil {
		return SubscribeItem{}, err
	}

	reg := s.registry(topic)
	for _, id := range reg.Broadcast(items) {
		reg.Unregister(id)
		s.logger.With(
			logpkg.Str("topic", topic),
			logpkg.Str("subscriber", id),
		).Warn("notify.subscriber_dropped")
	}

	s.logger.With(
		logpkg.Str("topic", topic),
		logpkg.Int("bytes", len(payload)),
		logpkg.Int64("seq", int64(items[0].Seq)),
		logpkg.Int64("dur_ms", time.Since(t0).Milliseconds()),
	).Debug("notify.publish")
	return toSubscribeItem(items[0]), nil
}

// ReadLast returns the newest n stored events in ascending order.
func (s *Service) ReadLast(ctx context.Context, topic string, n int) ([]SubscribeItem, error) {
	l, err := s.rt.OpenLog(topic)
	if err != nil {
		return nil, err
	}
	return toSubscribeItems(l.ReadLast(n)), nil
}

// ReadSince returns events with sequence above cursor, oldest first.
func (s *Service) ReadSince(ctx context.Context, topic string, cursor uint64, limit int) ([]SubscribeItem, uint64, error) {
	l, err := s.rt.OpenLog(topic)
	if err != nil {
		return nil, cursor, err
	}
	items := l.ReadSince(cursor, limit)
	next := cursor
	if n := len(items); n > 0 {
		next = items[n-1].Seq
	} else if cursor > l.LastSeq() {
		next = l.LastSeq()
	}
	return toSubscribeItems(items), next, nil
}

// WaitForNew blocks until an event newer than cursor passes the optional
// filter, the timeout lapses, or ctx is done. Timing out is a normal
// outcome reported in the result, not an error.
func (s *Service) WaitForNew(ctx context.Context, topic string, cursor uint64, timeout time.Duration, filter string) (WaitResult, error) {
	f, err := newCELFilter(filter)
	if err != nil {
		return WaitResult{}, err
	}
	l, err := s.rt.OpenLog(topic)
	if err != nil {
		return WaitResult{}, err
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return WaitResult{TimedOut: true, Cursor: cursor}, nil
		}
		items, timedOut, err := l.WaitForNew(ctx, cursor, remaining)
		if err != nil {
			return WaitResult{}, err
		}
		if timedOut {
			return WaitResult{TimedOut: true, Cursor: cursor}, nil
		}
		matched := make([]SubscribeItem, 0, len(items))
		for _, it := range items {
			cursor = it.Seq
			if f.Eval(it) {
				matched = append(matched, toSubscribeItem(it))
			}
		}
		if len(matched) > 0 {
			return WaitResult{Items: matched, Cursor: cursor}, nil
		}
		// Everything new was filtered out; keep waiting on the advanced cursor.
	}
}

// Subscribe streams events to sink until ctx ends, the limit is reached, or
// the subscriber falls behind. Stored events past opts.Cursor are replayed
// first (the newest opts.ReplayLast when no cursor is set), then delivery
// goes live through the fan-out registry. Replayed sequences are never
// re-sent by the live phase.
func (s *Service) Subscribe(ctx context.Context, topic string, opts SubscribeOptions, sink SubscribeSink) error {
	f, err := newCELFilter(opts.Filter)
	if err != nil {
		return err
	}
	if _, err := s.rt.EnsureTopic(topic); err != nil {
		return err
	}
	l, err := s.rt.OpenLog(topic)
	if err != nil {
		return err
	}

	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = s.rt.Config().SubscriberBuffer
	}

	// Register before replay so events appended during replay land in the
	// buffer instead of being missed. The seq guard below drops overlap.
	reg := s.registry(topic)
	sub := reg.Register(buffer)
	defer reg.Unregister(sub.ID)

	// A cursor past the head is stale, not an error: clamp it so the
	// consumer is replayed from the start instead of waiting forever for
	// sequences below a value that was never assigned.
	cursor := opts.Cursor
	if cursor > l.LastSeq() {
		cursor = 0
	}

	var replay []eventlog.Item
	switch {
	case opts.Cursor > 0:
		replay = l.ReadSince(cursor, 0)
	case opts.ReplayLast >= 0:
		n := opts.ReplayLast
		if n == 0 {
			n = s.rt.Config().ReplayLast
		}
		replay = l.ReadLast(n)
	}

	sent := 0
	lastSeq := cursor
	deliver := func(it eventlog.Item) (bool, error) {
		if it.Seq <= lastSeq {
			return false, nil
		}
		lastSeq = it.Seq
		if !f.Eval(it) {
			return false, nil
		}
		if err := sink.Send(toSubscribeItem(it)); err != nil {
			return false, err
		}
		sent++
		return true, nil
	}

	for _, it := range replay {
		if _, err := deliver(it); err != nil {
			return err
		}
		if opts.Limit > 0 && sent >= opts.Limit {
			return sink.Flush()
		}
	}
	if err := sink.Flush(); err != nil {
		return err
	}

	s.logger.With(
		logpkg.Str("topic", topic),
		logpkg.Str("subscriber", sub.ID),
		logpkg.Int("replayed", sent),
	).Debug("notify.subscribe_live")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sink.Context().Done():
			return sink.Context().Err()
		case it, ok := <-sub.C:
			if !ok {
				return ErrSlowConsumer
			}
			delivered, err := deliver(it)
			if err != nil {
				return err
			}
			if !delivered {
				continue
			}
			// Drain whatever else is buffered before flushing once.
			for drained := true; drained; {
				select {
				case more, ok := <-sub.C:
					if !ok {
						return ErrSlowConsumer
					}
					if _, err := deliver(more); err != nil {
						return err
					}
				default:
					drained = false
				}
			}
			if err := sink.Flush(); err != nil {
				return err
			}
			if opts.Limit > 0 && sent >= opts.Limit {
				return nil
			}
		}
	}
}

// Ack commits a durable cursor for a consumer group. Commits never regress.
func (s *Service) Ack(ctx context.Context, topic, group string, seq uint64) error {
	l, err := s.rt.OpenLog(topic)
	if err != nil {
		return err
	}
	if seq > l.LastSeq() {
		return eventlog.ErrNotFound
	}
	return l.CommitCursor(group, seq)
}

// Cursor reports the committed cursor for a consumer group, 0 if none.
func (s *Service) Cursor(topic, group string) (uint64, error) {
	l, err := s.rt.OpenLog(topic)
	if err != nil {
		return 0, err
	}
	seq, _ := l.GetCursor(group)
	return seq, nil
}

// Subscribers reports the number of live push subscribers on a topic.
func (s *Service) Subscribers(topic string) int {
	return s.registry(topic).Len()
}

// Stats summarizes every known topic.
func (s *Service) Stats(ctx context.Context) ([]TopicStats, error) {
	metas, err := s.rt.ListTopics()
	if err != nil {
		return nil, err
	}
	out := make([]TopicStats, 0, len(metas))
	for _, m := range metas {
		l, err := s.rt.OpenLog(m.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, TopicStats{
			Topic:       m.Name,
			FirstSeq:    l.FirstSeq(),
			LastSeq:     l.LastSeq(),
			Subscribers: s.Subscribers(m.Name),
		})
	}
	return out, nil
}

package producer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	cfgpkg "github.com/beaconhq/beacon/internal/config"
	notifysvc "github.com/beaconhq/beacon/internal/services/notify"
	logpkg "github.com/beaconhq/beacon/pkg/log"
)

// Producer publishes demo events at jittered intervals so consumers have a
// live feed without an external publisher. It owns no goroutines itself;
// the caller runs Run and cancels its context to stop.
type Producer struct {
	svc    *notifysvc.Service
	topic  string
	cfg    cfgpkg.ProducerConfig
	logger logpkg.Logger

	// rng and sleep are replaceable in tests.
	intn  func(n int) int
	sleep func(ctx context.Context, d time.Duration) bool
}

// New constructs a Producer for a topic.
func New(svc *notifysvc.Service, topic string, cfg cfgpkg.ProducerConfig, logger logpkg.Logger) *Producer {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("producer"))
	}
	return &Producer{
		svc:    svc,
		topic:  topic,
		cfg:    cfg,
		logger: logger,
		intn:   rand.Intn,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// interval picks a jittered gap within [MinIntervalMs, MaxIntervalMs].
func (p *Producer) interval() time.Duration {
	min := p.cfg.MinIntervalMs
	max := p.cfg.MaxIntervalMs
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	ms := min
	if span := max - min; span > 0 {
		ms += p.intn(span + 1)
	}
	return time.Duration(ms) * time.Millisecond
}

// Run publishes until ctx is canceled. Publish errors are logged and the
// loop keeps going; a broken producer must not take the server down.
func (p *Producer) Run(ctx context.Context) {
	n := 0
	for {
		if !p.sleep(ctx, p.interval()) {
			return
		}
		n++
		payload := fmt.Sprintf(`{"kind":"demo","n":%d,"at_ms":%d}`, n, time.Now().UnixMilli())
		item, err := p.svc.Publish(ctx, p.topic, []byte(payload), map[string]string{"source": "producer"})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.With(logpkg.Str("topic", p.topic), logpkg.Err(err)).Warn("producer.publish_failed")
			continue
		}
		p.logger.With(
			logpkg.Str("topic", p.topic),
			logpkg.Int64("seq", int64(item.Seq)),
		).Debug("producer.published")
	}
}

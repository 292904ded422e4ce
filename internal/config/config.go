package config

import (
	"encoding/json"
	"os"
	"time"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// DefaultTopic is the topic used when a request does not name one.
	DefaultTopic string `json:"defaultTopic"`
	// LongPollDefault is the wait applied when a long-poll request carries
	// no timeout_ms parameter.
	LongPollDefaultMs int `json:"longPollDefaultMs"`
	// LongPollMaxMs caps client-requested long-poll timeouts.
	LongPollMaxMs int `json:"longPollMaxMs"`
	// SubscriberBuffer is the buffered channel capacity per push subscriber.
	SubscriberBuffer int `json:"subscriberBuffer"`
	// ReplayLast is how many recent events a plain poll or fresh subscribe
	// sees by default.
	ReplayLast int `json:"replayLast"`
	// PayloadMaxBytes rejects oversized publishes.
	PayloadMaxBytes int `json:"payloadMaxBytes"`
	// Producer controls the built-in demo producer.
	Producer ProducerConfig `json:"producer"`
	// Retention controls background trims of the event log.
	Retention RetentionConfig `json:"retention"`
}

// ProducerConfig controls the built-in demo item producer.
type ProducerConfig struct {
	Enabled bool `json:"enabled"`
	// MinIntervalMs/MaxIntervalMs bound the jittered gap between items.
	MinIntervalMs int `json:"minIntervalMs"`
	MaxIntervalMs int `json:"maxIntervalMs"`
}

// RetentionConfig bounds the log by age and/or total bytes. Zero disables.
type RetentionConfig struct {
	MaxAgeMs   int64 `json:"maxAgeMs"`
	MaxBytes   int64 `json:"maxBytes"`
	IntervalMs int   `json:"intervalMs"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DefaultTopic:      "events",
		LongPollDefaultMs: int(30 * time.Second / time.Millisecond),
		LongPollMaxMs:     int(60 * time.Second / time.Millisecond),
		SubscriberBuffer:  64,
		ReplayLast:        5,
		PayloadMaxBytes:   1 << 20,
		Producer: ProducerConfig{
			Enabled:       false,
			MinIntervalMs: 3000,
			MaxIntervalMs: 8000,
		},
		Retention: RetentionConfig{
			IntervalMs: int(time.Minute / time.Millisecond),
		},
	}
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LongPollDefault returns the default long-poll wait as a duration.
func (c Config) LongPollDefault() time.Duration {
	return time.Duration(c.LongPollDefaultMs) * time.Millisecond
}

// LongPollMax returns the long-poll cap as a duration.
func (c Config) LongPollMax() time.Duration {
	return time.Duration(c.LongPollMaxMs) * time.Millisecond
}

package config

import (
	"os"
	"strconv"
)

// FromEnv overlays BEACON_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BEACON_DEFAULT_TOPIC"); v != "" {
		cfg.DefaultTopic = v
	}
	if n, ok := envInt("BEACON_LONG_POLL_DEFAULT_MS"); ok {
		cfg.LongPollDefaultMs = n
	}
	if n, ok := envInt("BEACON_LONG_POLL_MAX_MS"); ok {
		cfg.LongPollMaxMs = n
	}
	if n, ok := envInt("BEACON_SUBSCRIBER_BUFFER"); ok {
		cfg.SubscriberBuffer = n
	}
	if n, ok := envInt("BEACON_REPLAY_LAST"); ok {
		cfg.ReplayLast = n
	}
	if n, ok := envInt("BEACON_PAYLOAD_MAX_BYTES"); ok {
		cfg.PayloadMaxBytes = n
	}
	if v := os.Getenv("BEACON_PRODUCER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Producer.Enabled = b
		}
	}
	if n, ok := envInt("BEACON_PRODUCER_MIN_INTERVAL_MS"); ok {
		cfg.Producer.MinIntervalMs = n
	}
	if n, ok := envInt("BEACON_PRODUCER_MAX_INTERVAL_MS"); ok {
		cfg.Producer.MaxIntervalMs = n
	}
	if n, ok := envInt64("BEACON_RETENTION_MAX_AGE_MS"); ok {
		cfg.Retention.MaxAgeMs = n
	}
	if n, ok := envInt64("BEACON_RETENTION_MAX_BYTES"); ok {
		cfg.Retention.MaxBytes = n
	}
	if n, ok := envInt("BEACON_RETENTION_INTERVAL_MS"); ok {
		cfg.Retention.IntervalMs = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.DefaultTopic != "events" {
		t.Fatalf("default topic: %q", cfg.DefaultTopic)
	}
	if cfg.LongPollDefaultMs != 30000 {
		t.Fatalf("long poll default: %d", cfg.LongPollDefaultMs)
	}
	if cfg.LongPollMaxMs < cfg.LongPollDefaultMs {
		t.Fatalf("long poll cap below default")
	}
	if cfg.SubscriberBuffer <= 0 {
		t.Fatalf("subscriber buffer: %d", cfg.SubscriberBuffer)
	}
}

func TestLoadJSONOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "beacon.json")
	body := `{"defaultTopic":"alerts","longPollDefaultMs":5000,"producer":{"enabled":true,"minIntervalMs":100,"maxIntervalMs":200}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultTopic != "alerts" {
		t.Fatalf("topic override missing: %q", cfg.DefaultTopic)
	}
	if cfg.LongPollDefaultMs != 5000 {
		t.Fatalf("timeout override missing: %d", cfg.LongPollDefaultMs)
	}
	// untouched keys keep defaults
	if cfg.SubscriberBuffer != Default().SubscriberBuffer {
		t.Fatalf("unrelated key changed: %d", cfg.SubscriberBuffer)
	}
	if !cfg.Producer.Enabled || cfg.Producer.MinIntervalMs != 100 {
		t.Fatalf("producer override missing: %+v", cfg.Producer)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults")
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("BEACON_DEFAULT_TOPIC", "ticks")
	t.Setenv("BEACON_LONG_POLL_DEFAULT_MS", "1500")
	t.Setenv("BEACON_PRODUCER_ENABLED", "true")
	t.Setenv("BEACON_RETENTION_MAX_AGE_MS", "86400000")
	cfg := Default()
	FromEnv(&cfg)
	if cfg.DefaultTopic != "ticks" {
		t.Fatalf("topic: %q", cfg.DefaultTopic)
	}
	if cfg.LongPollDefaultMs != 1500 {
		t.Fatalf("timeout: %d", cfg.LongPollDefaultMs)
	}
	if !cfg.Producer.Enabled {
		t.Fatalf("producer not enabled")
	}
	if cfg.Retention.MaxAgeMs != 86400000 {
		t.Fatalf("retention: %d", cfg.Retention.MaxAgeMs)
	}
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("BEACON_SUBSCRIBER_BUFFER", "lots")
	cfg := Default()
	FromEnv(&cfg)
	if cfg.SubscriberBuffer != Default().SubscriberBuffer {
		t.Fatalf("garbage value applied: %d", cfg.SubscriberBuffer)
	}
}

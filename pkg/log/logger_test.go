package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithLevel(WarnLevel), WithOutput(NewWriterOutput(&buf)))
	logger.Info("should not appear")
	logger.Warn("should appear")
	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("info leaked past warn gate: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn missing: %q", out)
	}
}

func TestWithFieldsCarry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(NewWriterOutput(&buf)))
	derived := logger.With(Component("fanout"), Str("topic", "events"))
	derived.Info("registered")
	out := buf.String()
	if !strings.Contains(out, "component=fanout") || !strings.Contains(out, "topic=events") {
		t.Fatalf("fields missing: %q", out)
	}
	// parent logger must not inherit the derived fields
	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "topic=events") {
		t.Fatalf("derived fields leaked to parent: %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithFormatter(&JSONFormatter{}), WithOutput(NewWriterOutput(&buf)))
	logger.Error("boom", Int("attempt", 3))
	var obj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("invalid json output: %v (%q)", err, buf.String())
	}
	if obj["level"] != "ERROR" || obj["msg"] != "boom" {
		t.Fatalf("unexpected entry: %v", obj)
	}
	if obj["attempt"] != float64(3) {
		t.Fatalf("field missing: %v", obj)
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("debug"); err != nil || l != DebugLevel {
		t.Fatalf("debug: %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestApplyConfig(t *testing.T) {
	logger, err := ApplyConfig(&Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if logger.GetLevel() != ErrorLevel {
		t.Fatalf("level: %v", logger.GetLevel())
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

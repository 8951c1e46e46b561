package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Fatalf("expected default level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Fatalf("expected default format console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Fatal("expected timestamp enabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "loud", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid level")
	}

	cfg = Config{Level: "debug", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid format")
	}

	cfg = Config{Level: "debug", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "test").WithComponent("engine")
	log.Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}
	if entry[FieldComponent] != "engine" {
		t.Fatalf("expected component=engine, got %v", entry[FieldComponent])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service=test, got %v", entry["service"])
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "test")
	log.Info("order placed", Fields("symbol", "BTCUSDT", "amount", 0.5))

	line := buf.String()
	if !strings.Contains(line, `"symbol":"BTCUSDT"`) {
		t.Fatalf("expected symbol field in %s", line)
	}
	if !strings.Contains(line, `"amount":0.5`) {
		t.Fatalf("expected amount field in %s", line)
	}
}

func TestFields_OddPairs(t *testing.T) {
	m := Fields("a", 1, "dangling")
	if len(m) != 1 || m["a"] != 1 {
		t.Fatalf("unexpected map: %v", m)
	}
}

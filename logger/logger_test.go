package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "techdocs", buf)
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("techdocs")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "techdocs" {
		t.Errorf("expected service 'techdocs', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("invalid level should fall back to info")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected info message to be written")
	}
}

func TestWithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("publisher")
	l.Info("published", Fields(FieldEntity, "default/component/svc", FieldFiles, 3))

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != "publisher" {
		t.Errorf("expected component=publisher, got %v", rec[FieldComponent])
	}
	if rec[FieldEntity] != "default/component/svc" {
		t.Errorf("expected entity field, got %v", rec[FieldEntity])
	}
	if rec["service"] != "techdocs" {
		t.Errorf("expected service field, got %v", rec["service"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("bucket gone")).Error("readiness failed")
	if !strings.Contains(buf.String(), "bucket gone") {
		t.Errorf("expected error in output, got %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing", Fields("k", "v"))
	l.WithComponent("x").Warn("still nothing")
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
	ef := ErrorFields("publish", errors.New("boom"))
	if ef[FieldOperation] != "publish" || ef[FieldError] != "boom" {
		t.Errorf("unexpected error fields %v", ef)
	}
	df := DurationFields("fetch", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration %v", df[FieldDuration])
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	bad := Config{Level: "loud", Format: "json"}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid level error")
	}
	bad = Config{Level: "info", Format: "xml"}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid format error")
	}
}

func TestErrorValuedField(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").Warn("upload failed", Fields(FieldPath, "index.html", FieldError, errors.New("denied")))

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec[FieldError] != "denied" {
		t.Errorf("expected error rendered as string, got %v", rec[FieldError])
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&Config{Level: "info", Format: "text"}, "techdocs", &buf).Info("ready", Fields(FieldBackend, "local"))
	out := buf.String()
	if !strings.Contains(out, "[TEC][INF]") || !strings.Contains(out, "backend:local") {
		t.Errorf("unexpected text output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("text format must not contain color codes: %q", out)
	}
}

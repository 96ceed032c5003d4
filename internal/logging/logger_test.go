package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn")

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}

	Component(logger, "store.records").Warn("row skipped", "line", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["component"] != "store.records" {
		t.Fatalf("expected component attr, got %v", entry["component"])
	}
	if entry["msg"] != "row skipped" {
		t.Fatalf("unexpected message %v", entry["msg"])
	}
}

func TestNewWithWriterInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "chatty")

	logger.Debug("hidden")
	logger.Info("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) || bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Fatalf("unexpected output %s", buf.String())
	}
}

func TestComponentNilLogger(t *testing.T) {
	Component(nil, "x").Error("dropped")
}

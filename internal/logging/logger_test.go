package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"onboardbot/internal/logging"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("user created", logging.String(logging.FieldUser, "avpod"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["msg"] != "user created" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if entry["user"] != "avpod" {
		t.Fatalf("unexpected user %v", entry["user"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatal("expected ts field")
	}
}

func TestConsoleHandlerPullsComponentForward(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	component := logging.NewComponentLogger(logger, "dispatch")
	component.Info("lane assigned", logging.Int(logging.FieldLane, 3))

	line := buf.String()
	if !strings.Contains(line, "dispatch: lane assigned") {
		t.Fatalf("component prefix missing: %q", line)
	}
	if !strings.Contains(line, "lane=3") {
		t.Fatalf("attr missing: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as attr: %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	logger.Warn("loud")
	if buf.Len() == 0 {
		t.Fatal("warn should be emitted")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithRequestID_AttachesAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithRequestID(context.Background(), logger, "req-123").Error("boom", "path", "/profile/u1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v\nraw: %s", err, buf.String())
	}
	if entry["requestId"] != "req-123" {
		t.Fatalf("expected requestId attribute, got %v", entry)
	}
	if entry["path"] != "/profile/u1" {
		t.Fatalf("expected call-site attributes preserved, got %v", entry)
	}
}

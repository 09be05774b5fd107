package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestLogSinkWritesEventName(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	sink.Publish(context.Background(), PasswordChanged{UserID: "u-1", Via: "reset", At: time.Unix(0, 0).UTC()})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["event"] != "password.changed" {
		t.Fatalf("unexpected event name: %v", rec["event"])
	}
	payload, ok := rec["payload"].(map[string]any)
	if !ok || payload["userId"] != "u-1" {
		t.Fatalf("unexpected payload: %v", rec["payload"])
	}
}

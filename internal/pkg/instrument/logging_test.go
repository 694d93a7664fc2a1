package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return out
}

func TestHandler_MasksSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{ServiceName: "otp", MaskFields: []string{"code", "Authorization"}}, nil))

	logger.Info("issued",
		"code", "123456",
		"request", `{"code":"654321","operation_id":"login"}`,
		slog.Group("headers", "authorization", "Bearer x"),
	)

	line := decodeLine(t, &buf)
	if line["code"] != "***" {
		t.Fatalf("code not masked: %v", line["code"])
	}
	if req, _ := line["request"].(string); req != `{"code":"***","operation_id":"login"}` {
		t.Fatalf("json string not masked: %v", line["request"])
	}
	if hdr, _ := line["headers"].(map[string]any); hdr["authorization"] != "***" {
		t.Fatalf("group not masked: %v", line["headers"])
	}
}

func TestHandler_ContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{ServiceName: "otp"}, nil))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "hello")

	line := decodeLine(t, &buf)
	if line["_cID"] != "cid-1" || line["service"] != "otp" {
		t.Fatalf("missing context attributes: %v", line)
	}
	if _, ok := line["ts"]; !ok {
		t.Fatalf("time key should be renamed to ts: %v", line)
	}
	if line["severity"] != "INFO" {
		t.Fatalf("level key should be renamed to severity: %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug || parseLevel("WARN") != slog.LevelWarn || parseLevel("nope") != slog.LevelInfo {
		t.Fatalf("unexpected level parsing")
	}
}

func TestNewNoop(t *testing.T) {
	ins := NewNoop()
	_, span := ins.Tracer("t").Start(context.Background(), "s")
	span.End()
	if err := ins.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

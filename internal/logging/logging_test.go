package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// testLogger creates a logger that writes to a buffer for testing
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := bolt.New(bolt.NewJSONHandler(buf)).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	if config.Level != "info" || config.Format != "console" {
		t.Errorf("config = %+v", config)
	}
	if config.Output != os.Stderr {
		t.Errorf("Output = %v, want os.Stderr", config.Output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"INFO", bolt.INFO},
		{"warn", bolt.WARN},
		{"warning", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO},
		{"", bolt.INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := New(Config{Level: "warn", Format: "json", Output: buf})
	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	logger.Warn().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("expected warn output, got %q", buf.String())
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		want  []string
	}{
		{"component", Component("server"), []string{`"component":"server"`}},
		{"route", Route("POST", "/api/charts/suggestions"), []string{`"method":"POST"`, `"path":"/api/charts/suggestions"`}},
		{"status", Status(400), []string{`"status":400`}},
		{"request id", RequestID("req-1"), []string{`"request_id":"req-1"`}},
		{"duration", Duration(100 * time.Millisecond), []string{`"duration_ms":100`}},
		{"rows", Rows(12), []string{`"rows":12`}},
		{"columns", Columns(3), []string{`"columns":3`}},
		{"chart", Chart("pie"), []string{`"chart":"pie"`}},
		{"file", File("sales.csv"), []string{`"file":"sales.csv"`}},
		{"key", Key("q1"), []string{`"key":"q1"`}},
		{"backend", Backend("badger"), []string{`"backend":"badger"`}},
		{"error", ErrorField(errors.New("boom")), []string{`"error":"boom"`}},
		{"str", Str("k", "v"), []string{`"k":"v"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, buf := testLogger()
			tt.field(logger.Info()).Msg("test")
			for _, w := range tt.want {
				if !bytes.Contains(buf.Bytes(), []byte(w)) {
					t.Errorf("expected %s in output: %s", w, buf.String())
				}
			}
		})
	}
}

func TestErrorField_Nil(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	ErrorField(nil)(logger.Info()).Msg("test")
	if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
		t.Errorf("unexpected error field in output: %s", buf.String())
	}
}

func TestLogEvent_Chain(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	NewEvent(logger.Info()).Add(Component("cli")).Add(Rows(2)).Msg("chained")
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"cli"`)) || !bytes.Contains(buf.Bytes(), []byte(`"rows":2`)) {
		t.Fatalf("chain output = %s", buf.String())
	}
}

package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf)

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected log output to contain message, got %q", out)
	}
	if !strings.Contains(out, "value") {
		t.Errorf("expected log output to contain key-value pair, got %q", out)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"n": 1}

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(out) != `{"n":1}` {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(out), "\n") {
			t.Errorf("expected indented output, got %q", out)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Error("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid format, got %q", a)
	}
}

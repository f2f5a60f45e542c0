package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewJSONWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf}).With(String("body", "Moon"))

	log.Debug(context.Background(), "sampled", Float64("sim_time", 12.5), Int("frame", 3), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "sampled" || rec["body"] != "Moon" || rec["sim_time"] != 12.5 || rec["error"] != "boom" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(noopLogger); !ok {
		t.Fatalf("OrNoop(nil) should be a no-op logger")
	}
	l := New(Config{Output: &bytes.Buffer{}})
	if OrNoop(l) != l {
		t.Fatalf("OrNoop should return a non-nil logger unchanged")
	}
	if Err(nil).Value != nil {
		t.Fatalf("Err(nil) should carry a nil value")
	}
}

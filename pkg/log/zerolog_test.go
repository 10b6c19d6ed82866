package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	l.Info("sent state",
		String("action", "inc"),
		Int("count", 3),
		Bool("debugging", false),
		Duration("took", time.Second),
		Err(errors.New("boom")),
		Any("path", []string{"/a"}),
	)

	out := buf.String()
	for _, want := range []string{`"message":"sent state"`, `"action":"inc"`, `"count":3`, `"debugging":false`, `"error":"boom"`, `"path":["/a"]`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestZerologAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapter(&buf, zerolog.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message not written: %q", buf.String())
	}
}

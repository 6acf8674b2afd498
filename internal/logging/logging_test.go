package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestDebugfRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitTo(&buf, "info", false)
	Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	InitTo(&buf, "debug", true)
	Debugf("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("debug line missing: %q", buf.String())
	}
	Init("info", false)
}

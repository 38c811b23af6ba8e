package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		" WARN ":  LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	l := New()
	l.SetLevel(LogLevelWarn)
	l.Info("hidden")
	l.Debug("hidden too")
	l.Warn("shown")
	l.WithError(errors.New("boom")).Error("failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info/debug lines leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
	if !strings.Contains(out, "failed: boom") {
		t.Fatalf("error line missing wrapped error: %q", out)
	}
}

func TestForUserTagsLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	New().ForUser("demo").Info("loaded")
	if !strings.Contains(buf.String(), "[demo]") {
		t.Fatalf("missing user tag: %q", buf.String())
	}
}

package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{level: LogDebug, output: &buf}

	l.Error("e")
	l.Warn("w")
	l.Info("i")
	l.Verbose("v")
	l.Debug("d")

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), output)
	}

	wantPrefixes := []string{"[ERR]", "[WRN]", "[INF]", "[VRB]", "[DBG]"}
	for i, prefix := range wantPrefixes {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d %q missing prefix %q", i, lines[i], prefix)
		}
	}
}

func TestLogger_QuietMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(0)
	l.SetOutput(&buf)

	l.Info("should not appear")
	l.Verbose("should not appear")
	l.Debug("should not appear")
	l.Error("always appears")

	if got := buf.String(); got != "[ERR] always appears\n" {
		t.Errorf("quiet output = %q", got)
	}
}

func TestLogger_Timestamps(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(3) // debug level turns timestamps on
	l.SetOutput(&buf)

	l.Info("test")

	// "HH:MM:SS.mmm [INF] test\n"
	output := buf.String()
	if len(output) < len("00:00:00.000 [INF] test\n") || output[2] != ':' {
		t.Errorf("expected timestamp prefix, got %q", output)
	}
}

func TestLogger_RawLineEndings(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(1)
	l.SetOutput(&buf)

	l.SetRaw(true)
	l.Warn("two\nlines")
	l.SetRaw(false)
	l.Warn("cooked")

	want := "[WRN] two\r\nlines\r\n[WRN] cooked\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

package transcript

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTranscript_FramesOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")

	tr, err := Create(path, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tr.Write([]byte("☺ Welcome ║")) //nolint:errcheck
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	start := strings.Index(got, "=== Session started at ")
	body := strings.Index(got, "☺ Welcome ║")
	end := strings.Index(got, "=== Session ended at ")
	if start < 0 || body < 0 || end < 0 || !(start < body && body < end) {
		t.Errorf("transcript layout wrong:\n%s", got)
	}
}

func TestTranscript_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	for i := 0; i < 2; i++ {
		tr, err := Create(path, false)
		if err != nil {
			t.Fatal(err)
		}
		tr.Close()
	}
	data, _ := os.ReadFile(path)
	if n := strings.Count(string(data), "=== Session started"); n != 2 {
		t.Errorf("found %d start markers, want 2", n)
	}
}

func TestTranscript_FixedClock(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(1994, 3, 1, 22, 0, 0, 0, time.UTC)
	tr := newTranscript(&buf, nil, func() time.Time { return at })

	tr.Write([]byte("x")) //nolint:errcheck
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	want := "x\n=== Session ended at 1994-03-01T22:00:00Z ===\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTranscript_WriteErrorSurfacesOnClose(t *testing.T) {
	tr := newTranscript(failingWriter{}, nil, time.Now)

	n, err := tr.Write([]byte("abc"))
	if err != nil || n != 3 {
		t.Fatalf("Write = %d, %v; failures are deferred to Close", n, err)
	}
	if err := tr.Close(); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Close err = %v", err)
	}
}

func TestCreate_BadPath(t *testing.T) {
	if _, err := Create(filepath.Join(t.TempDir(), "missing", "x.log"), false); err == nil {
		t.Fatal("expected error")
	}
}

func TestTranscript_Plain(t *testing.T) {
	var buf bytes.Buffer
	tr := newTranscript(&buf, nil, time.Now)
	tr.plain = true

	tr.Write([]byte("\x1b[1;33m☺ Main Menu\x1b[0m\r\n\x1b]0;BBS\x07")) //nolint:errcheck
	if !strings.HasPrefix(buf.String(), "☺ Main Menu\r\n") {
		t.Errorf("plain transcript = %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b") {
		t.Errorf("escape left in plain transcript: %q", buf.String())
	}
}

package cp437

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecode_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Hello World", "Hello World"},
		{"smiley", "\x01", "☺"},
		{"three glyphs", "\x01\x02\x03", "☺☻♥"},
		{"glyph in text", "Hi \x01!", "Hi ☺!"},
		{"csi colour", "\x1b[31mRed\x1b[0m", "\x1b[31mRed\x1b[0m"},
		{"line feed", "Test\n", "Test\n"},
		{"crlf", "a\r\nb", "a\r\nb"},
		{"tab and backspace", "a\tb\bc", "a\tb\bc"},
		{"house", "\x7f", "⌂"},
		{"arrows", "\x18\x19\x16\x17", "→←↑↓"},
		{"high byte raw", "\xb3", "\xb3"},
		{"nul raw", "\x00", "\x00"},
		{"lone escape", "\x1bX", "↔X"},
		{"trailing escape", "a\x1b", "a↔"},
		{"escape before escape", "\x1b\x1b[m", "↔\x1b[m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Decode([]byte(tt.in), 0)
			if got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if truncated {
				t.Error("unexpected truncation")
			}
		})
	}
}

func TestDecode_PrintableRange(t *testing.T) {
	for b := 0x20; b <= 0x7E; b++ {
		got, _ := Decode([]byte{byte(b)}, 0)
		if got != string(rune(b)) {
			t.Errorf("Decode(%#02x) = %q", b, got)
		}
	}
}

func TestDecode_SpecialsIgnoreNeighbours(t *testing.T) {
	for _, b := range []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x16, 0x17, 0x18, 0x19, 0x7F} {
		want := Graphical.Lookup(b)
		for _, ctx := range [][2]string{{"", ""}, {"x", "y"}, {"\n", "\t"}, {"\x01", "\x02"}} {
			in := ctx[0] + string([]byte{b}) + ctx[1]
			got, _ := Decode([]byte(in), 0)
			head, _ := Decode([]byte(ctx[0]), 0)
			tail, _ := Decode([]byte(ctx[1]), 0)
			if got != head+want+tail {
				t.Errorf("Decode(%q) = %q, want %q", in, got, head+want+tail)
			}
		}
	}
}

func TestDecode_PerByteWithoutEscape(t *testing.T) {
	var in []byte
	var want strings.Builder
	for b := 255; b >= 0; b-- {
		if b == ESC {
			continue
		}
		in = append(in, byte(b))
		want.WriteString(Graphical.Lookup(byte(b)))
	}
	got, _ := Decode(in, 0)
	if got != want.String() {
		t.Error("decoding without ESC is not a per-byte map")
	}
}

func TestDecode_CSIPassthrough(t *testing.T) {
	seqs := []string{
		"\x1b[m",
		"\x1b[1;31m",
		"\x1b[2J",
		"\x1b[?25h",
		"\x1b[10;20H",
		"\x1b[\x01\x02\x7fm", // body bytes are never translated
		"\x1b[~",
	}
	for _, seq := range seqs {
		got, _ := Decode([]byte(seq), 0)
		if got != seq {
			t.Errorf("Decode(%q) = %q", seq, got)
		}
		got, _ = Decode([]byte(seq+"\x01"), 0)
		if got != seq+"☺" {
			t.Errorf("Decode(%q) = %q, translation did not resume", seq+"\x01", got)
		}
	}
}

func TestDecode_OSCPassthrough(t *testing.T) {
	seqs := []string{
		"\x1b]0;title\x07",
		"\x1b]2;\x01\x02\x07",
		"\x1b]8;;http://x\x1b\\",
		"\x1b]0;a\x1bb\x07", // ESC not followed by \ stays in the body
	}
	for _, seq := range seqs {
		got, _ := Decode([]byte(seq+"\x03"), 0)
		if got != seq+"♥" {
			t.Errorf("Decode(%q) = %q", seq+"\x03", got)
		}
	}
}

func TestDecode_UnterminatedSequenceStands(t *testing.T) {
	for _, in := range []string{"\x1b[31", "\x1b]0;title", "\x1b[", "\x1b]"} {
		got, truncated := Decode([]byte(in), 0)
		if got != in || truncated {
			t.Errorf("Decode(%q) = %q, %v", in, got, truncated)
		}
	}
}

func TestDecode_IdempotentOnPrintable(t *testing.T) {
	in := "The quick brown fox jumps over the lazy dog 0123456789 !@#$%^&*()"
	once, _ := Decode([]byte(in), 0)
	twice, _ := Decode([]byte(once), 0)
	if once != in || twice != once {
		t.Errorf("once %q, twice %q", once, twice)
	}
}

func TestDecode_TruncationKeepsRunesWhole(t *testing.T) {
	in := bytes.Repeat([]byte{0x01}, 10) // 3 bytes each
	for capacity := 1; capacity < 30; capacity++ {
		got, truncated := Decode(in, capacity)
		if !truncated {
			t.Fatalf("capacity %d: expected truncation", capacity)
		}
		if len(got) > capacity {
			t.Errorf("capacity %d: output is %d bytes", capacity, len(got))
		}
		if len(got) != capacity/3*3 {
			t.Errorf("capacity %d: got %d bytes, want %d", capacity, len(got), capacity/3*3)
		}
		if !utf8.ValidString(got) {
			t.Errorf("capacity %d: split rune in %q", capacity, got)
		}
	}
	if got, truncated := Decode(in, 30); truncated || len(got) != 30 {
		t.Errorf("exact fit: %d bytes, truncated=%v", len(got), truncated)
	}
}

func TestDecode_TruncationKeepsPairsWhole(t *testing.T) {
	tests := []struct {
		in       string
		capacity int
		want     string
	}{
		{"\x1b[m", 1, ""},
		{"\x1b[m", 2, "\x1b["},
		{"a\x1b]m", 2, "a"},
		{"\x1b]0\x1b\\", 4, "\x1b]0"},
		{"\x1b]0\x1b\\", 5, "\x1b]0\x1b\\"},
	}
	for _, tt := range tests {
		got, truncated := Decode([]byte(tt.in), tt.capacity)
		if got != tt.want {
			t.Errorf("Decode(%q, %d) = %q, want %q", tt.in, tt.capacity, got, tt.want)
		}
		if truncated != (len(tt.want) < len(tt.in)) {
			t.Errorf("Decode(%q, %d) truncated = %v", tt.in, tt.capacity, truncated)
		}
	}
}

func TestDecoder_CarryAcrossEverySplit(t *testing.T) {
	full := []byte("ab\x1b[1;31mRed\x1b[0m x\x1bZy \x1b]0;t\x07\x1b]2;x\x1b\\end\x01")
	want, _ := Decode(full, 0)

	for k := 0; k <= len(full); k++ {
		d := NewDecoder(nil, true)
		var got []byte
		out, _ := d.Decode(full[:k], 0)
		got = append(got, out...)
		out, _ = d.Decode(full[k:], 0)
		got = append(got, out...)
		got = append(got, d.Flush(nil)...)
		if string(got) != want {
			t.Errorf("split at %d: got %q, want %q", k, got, want)
		}
		if d.InSequence() {
			t.Errorf("split at %d: decoder still in a sequence", k)
		}
	}
}

func TestDecoder_CarryHoldsTrailingEscape(t *testing.T) {
	d := NewDecoder(nil, true)
	out, _ := d.Decode([]byte("a\x1b"), 0)
	if string(out) != "a" {
		t.Fatalf("first chunk = %q, want %q", out, "a")
	}
	if !d.InSequence() {
		t.Fatal("trailing ESC should be held")
	}
	if got := string(d.Flush(nil)); got != "↔" {
		t.Errorf("Flush = %q, want %q", got, "↔")
	}
	if got := string(d.Flush(nil)); got != "" {
		t.Errorf("second Flush = %q, want empty", got)
	}
}

func TestDecoder_LegacySplitsDecodeTailAsText(t *testing.T) {
	d := NewDecoder(nil, false)
	out, _ := d.Decode([]byte("\x1b[31"), 0)
	if string(out) != "\x1b[31" {
		t.Fatalf("first chunk = %q", out)
	}
	out, _ = d.Decode([]byte("\x01m"), 0)
	if string(out) != "☺m" {
		t.Errorf("second chunk = %q, want %q", out, "☺m")
	}
}

func TestDecoder_TruncationResetsState(t *testing.T) {
	d := NewDecoder(nil, true)
	_, truncated := d.Decode([]byte("\x1b[12345678m"), 4)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if d.InSequence() {
		t.Error("state should reset after truncation")
	}
	out, _ := d.Decode([]byte("\x01"), 0)
	if string(out) != "☺" {
		t.Errorf("next chunk = %q, want %q", out, "☺")
	}
}

func TestDecoder_ExtendedTable(t *testing.T) {
	d := NewDecoder(Extended, true)
	out, _ := d.Decode([]byte("\xc9\xcd\xbb\x1b[1m\xb3"), 0)
	if string(out) != "╔═╗\x1b[1m│" {
		t.Errorf("got %q", out)
	}
}

func TestDecoder_AppendDecodeReusesBuffer(t *testing.T) {
	d := NewDecoder(nil, true)
	buf := make([]byte, 0, 64)
	out, _ := d.AppendDecode(buf, []byte("hi\x01"), 64)
	if &out[0] != &buf[:1][0] {
		t.Error("AppendDecode should write into dst")
	}
	if string(out) != "hi☺" {
		t.Errorf("got %q", out)
	}
}

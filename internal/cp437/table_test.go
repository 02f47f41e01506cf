package cp437

import (
	"testing"
	"unicode/utf8"
)

func TestGraphical_LowRangeGlyphs(t *testing.T) {
	tests := []struct {
		b    byte
		want string
	}{
		{0x01, "☺"}, {0x02, "☻"}, {0x03, "♥"}, {0x04, "♦"},
		{0x05, "♣"}, {0x06, "♠"}, {0x07, "•"}, {0x0B, "♂"},
		{0x0C, "♀"}, {0x0E, "►"}, {0x0F, "◄"}, {0x10, "↕"},
		{0x11, "‼"}, {0x12, "¶"}, {0x13, "§"}, {0x14, "▬"},
		{0x15, "↨"}, {0x16, "↑"}, {0x17, "↓"}, {0x18, "→"},
		{0x19, "←"}, {0x1A, "∟"}, {0x1B, "↔"}, {0x1C, "▲"},
		{0x1D, "▼"}, {0x1E, "⌠"}, {0x1F, "⌡"}, {0x7F, "⌂"},
	}
	for _, tt := range tests {
		if got := Graphical.Lookup(tt.b); got != tt.want {
			t.Errorf("Lookup(%#02x) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestGraphical_Identity(t *testing.T) {
	keep := []byte{0x00, '\b', '\t', '\n', '\r'}
	for b := 0x20; b <= 0x7E; b++ {
		keep = append(keep, byte(b))
	}
	for b := 0x80; b <= 0xFF; b++ {
		keep = append(keep, byte(b))
	}
	for _, b := range keep {
		if got := Graphical.Lookup(b); got != string([]byte{b}) {
			t.Errorf("Lookup(%#02x) = %q, want the byte itself", b, got)
		}
	}
}

func TestExtended_HighRange(t *testing.T) {
	tests := []struct {
		b    byte
		want string
	}{
		{0x82, "é"},
		{0xB0, "░"},
		{0xB3, "│"},
		{0xC4, "─"},
		{0xC9, "╔"},
		{0xDB, "█"},
		{0xE1, "ß"},
	}
	for _, tt := range tests {
		if got := Extended.Lookup(tt.b); got != tt.want {
			t.Errorf("Lookup(%#02x) = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func TestExtended_LowHalfMatchesGraphical(t *testing.T) {
	for b := 0; b < 0x80; b++ {
		if Extended[b] != Graphical[b] {
			t.Errorf("byte %#02x: extended %q, graphical %q", b, Extended[b], Graphical[b])
		}
	}
}

func TestTables_WithinMaxExpansion(t *testing.T) {
	for _, tbl := range []*Table{Graphical, Extended} {
		for b, s := range tbl {
			if len(s) > MaxExpansion {
				t.Errorf("byte %#02x expands to %d bytes", b, len(s))
			}
			if b >= 0x80 && tbl == Graphical {
				continue // raw high bytes are not valid UTF-8 on their own
			}
			if !utf8.ValidString(s) {
				t.Errorf("byte %#02x maps to invalid UTF-8 %q", b, s)
			}
		}
	}
}

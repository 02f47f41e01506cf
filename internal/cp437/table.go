// Package cp437 translates the byte stream of a CP437 host (BBS, MUD and
// other legacy telnet services) into UTF-8 for a modern terminal, leaving
// ANSI control sequences untouched.
package cp437

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ── Byte values ──────────────────────────────────────────────────────

const (
	ESC = 0x1B // escape introducer
	BEL = 0x07 // OSC terminator

	csiOpener = '['
	oscOpener = ']'
	stFinal   = '\\' // second byte of the ESC \ string terminator
)

// MaxExpansion is the widest emission a single input byte can produce.
const MaxExpansion = utf8.UTFMax

// ── Tables ───────────────────────────────────────────────────────────

// Table maps every byte value to its display form.  Entries that carry
// no glyph override hold the byte itself.
type Table [256]string

// graphical holds the glyphs CP437 assigns to the low control range.
// BS, HT, LF and CR are absent so they keep their control meaning, and
// NUL is left alone.
var graphical = map[byte]rune{
	0x01: '☺', 0x02: '☻', 0x03: '♥', 0x04: '♦',
	0x05: '♣', 0x06: '♠', 0x07: '•', 0x0B: '♂',
	0x0C: '♀', 0x0E: '►', 0x0F: '◄', 0x10: '↕',
	0x11: '‼', 0x12: '¶', 0x13: '§', 0x14: '▬',
	0x15: '↨', 0x16: '↑', 0x17: '↓', 0x18: '→',
	0x19: '←', 0x1A: '∟', 0x1B: '↔', 0x1C: '▲',
	0x1D: '▼', 0x1E: '⌠', 0x1F: '⌡', 0x7F: '⌂',
}

var (
	// Graphical renders the low-range glyphs and passes every other
	// byte through unchanged.
	Graphical = buildTable(false)

	// Extended is Graphical plus the CP437 high half (0x80-0xFF):
	// box drawing, shading and accented letters.
	Extended = buildTable(true)
)

func buildTable(high bool) *Table {
	var t Table
	for i := 0; i < 256; i++ {
		b := byte(i)
		switch r, ok := graphical[b]; {
		case ok:
			t[i] = string(r)
		case high && b >= 0x80:
			t[i] = string(charmap.CodePage437.DecodeByte(b))
		default:
			t[i] = string([]byte{b})
		}
	}
	return &t
}

// Lookup returns the display form of b.
func (t *Table) Lookup(b byte) string { return t[b] }

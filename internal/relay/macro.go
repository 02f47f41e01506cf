package relay

import "cptel/internal/cp437"

// macroKeys are the vi-style letters a bell macro spells arrows with.
var macroKeys = map[rune]string{
	'h': "\x1b[D",
	'j': "\x1b[B",
	'k': "\x1b[A",
	'l': "\x1b[C",
}

// ExpandMacro turns macro text into the bytes sent after Ctrl+G:
// h, j, k and l become left, down, up and right arrows, anything else
// is sent as typed.
func ExpandMacro(text string) []byte {
	var out []byte
	for _, r := range text {
		if seq, ok := macroKeys[r]; ok {
			out = append(out, seq...)
			continue
		}
		out = append(out, string(r)...)
	}
	return out
}

// expandBell appends keys to dst with BellMacro inserted after every
// BEL.
func (r *Relay) expandBell(dst, keys []byte) []byte {
	for _, b := range keys {
		dst = append(dst, b)
		if b == cp437.BEL {
			dst = append(dst, r.BellMacro...)
		}
	}
	return dst
}

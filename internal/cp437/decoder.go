package cp437

// escState tracks where the decoder sits relative to an escape sequence.
type escState uint8

const (
	stNone       escState = iota
	stPendingESC          // ESC was the last byte of the previous chunk
	stCSI                 // inside ESC [ ..., waiting for a final byte
	stOSC                 // inside ESC ] ..., waiting for BEL or ESC \
	stOSCEsc              // inside OSC, previous chunk ended on ESC
)

// isCSIFinal reports whether b terminates a CSI sequence.
func isCSIFinal(b byte) bool { return b >= 0x40 && b <= 0x7E }

// Decoder converts CP437 bytes to UTF-8.  CSI (ESC [) and OSC (ESC ])
// sequences are copied byte for byte; every other byte goes through
// Table.
//
// With Carry set, an escape sequence cut by a chunk boundary is resumed
// on the next call, and a trailing lone ESC is held back until the next
// byte shows whether it opens a sequence.  Without Carry every call
// starts fresh, so a split sequence's tail is decoded as plain text.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	Table *Table
	Carry bool

	state escState
}

// NewDecoder returns a Decoder using t (Graphical when nil).
func NewDecoder(t *Table, carry bool) *Decoder {
	if t == nil {
		t = Graphical
	}
	return &Decoder{Table: t, Carry: carry}
}

// Decode is the stateless form of [Decoder.Decode] over the Graphical
// table.  A capacity of zero or less means unbounded.
func Decode(src []byte, capacity int) (string, bool) {
	d := Decoder{Table: Graphical}
	out, truncated := d.Decode(src, capacity)
	return string(out), truncated
}

// Decode translates src into a new slice of at most capacity bytes.
func (d *Decoder) Decode(src []byte, capacity int) ([]byte, bool) {
	return d.AppendDecode(nil, src, capacity)
}

// AppendDecode translates src into dst[:0] and returns the result.  It
// stops before any emission that would push the output past capacity
// and reports truncated; the unread tail of src is dropped and the
// escape state is reset.  An emission (a glyph, an ESC opener pair, a
// sequence byte, an ESC \ pair) is never split.
func (d *Decoder) AppendDecode(dst, src []byte, capacity int) (out []byte, truncated bool) {
	if !d.Carry {
		d.state = stNone
	}
	t := d.table()
	w := newBoundedWriter(dst, capacity)

	for i := 0; i < len(src); {
		n, ok := d.step(w, t, src[i:])
		if !ok {
			d.state = stNone
			return w.bytes(), true
		}
		i += n
	}
	return w.bytes(), false
}

// Flush emits an ESC held back at the end of the previous chunk.  The
// relay calls it when no further input will arrive.
func (d *Decoder) Flush(dst []byte) []byte {
	if d.state != stPendingESC {
		d.state = stNone
		return dst[:0]
	}
	d.state = stNone
	return append(dst[:0], d.table().Lookup(ESC)...)
}

// InSequence reports whether the decoder stopped inside an escape
// sequence (or on a held ESC).
func (d *Decoder) InSequence() bool { return d.state != stNone }

func (d *Decoder) table() *Table {
	if d.Table == nil {
		return Graphical
	}
	return d.Table
}

// step handles the head of rest and returns how many bytes it consumed.
// A zero count with ok set means the state changed and the same byte
// must be looked at again.
func (d *Decoder) step(w *boundedWriter, t *Table, rest []byte) (int, bool) {
	b := rest[0]

	switch d.state {
	case stPendingESC:
		if b == csiOpener || b == oscOpener {
			if !w.emit(ESC, b) {
				return 0, false
			}
			d.state = openerState(b)
			return 1, true
		}
		if !w.emitString(t.Lookup(ESC)) {
			return 0, false
		}
		d.state = stNone
		return 0, true

	case stCSI:
		if !w.emit(b) {
			return 0, false
		}
		if isCSIFinal(b) {
			d.state = stNone
		}
		return 1, true

	case stOSCEsc:
		if b == stFinal {
			if !w.emit(b) {
				return 0, false
			}
			d.state = stNone
			return 1, true
		}
		d.state = stOSC
		return 0, true

	case stOSC:
		if b == ESC && len(rest) > 1 && rest[1] == stFinal {
			if !w.emit(ESC, stFinal) {
				return 0, false
			}
			d.state = stNone
			return 2, true
		}
		if !w.emit(b) {
			return 0, false
		}
		switch b {
		case BEL:
			d.state = stNone
		case ESC:
			// The \ of an ESC \ pair may still follow in the next chunk.
			d.state = stOSCEsc
		}
		return 1, true
	}

	if b == ESC {
		if len(rest) > 1 && (rest[1] == csiOpener || rest[1] == oscOpener) {
			if !w.emit(ESC, rest[1]) {
				return 0, false
			}
			d.state = openerState(rest[1])
			return 2, true
		}
		if len(rest) == 1 && d.Carry {
			d.state = stPendingESC
			return 1, true
		}
	}

	if !w.emitString(t.Lookup(b)) {
		return 0, false
	}
	return 1, true
}

func openerState(opener byte) escState {
	if opener == csiOpener {
		return stCSI
	}
	return stOSC
}

package cp437

// boundedWriter accumulates decoder output up to a fixed capacity.
// Every emission is all-or-nothing: a write that would cross the
// capacity is refused whole and the writer latches full.
type boundedWriter struct {
	buf  []byte
	cap  int // 0 = unbounded
	full bool
}

func newBoundedWriter(dst []byte, capacity int) *boundedWriter {
	if capacity < 0 {
		capacity = 0
	}
	return &boundedWriter{buf: dst[:0], cap: capacity}
}

// fits reports whether an emission of n bytes can start.
func (w *boundedWriter) fits(n int) bool {
	return !w.full && (w.cap == 0 || len(w.buf)+n <= w.cap)
}

func (w *boundedWriter) emit(p ...byte) bool {
	if !w.fits(len(p)) {
		w.full = true
		return false
	}
	w.buf = append(w.buf, p...)
	return true
}

func (w *boundedWriter) emitString(s string) bool {
	if !w.fits(len(s)) {
		w.full = true
		return false
	}
	w.buf = append(w.buf, s...)
	return true
}

func (w *boundedWriter) bytes() []byte { return w.buf }

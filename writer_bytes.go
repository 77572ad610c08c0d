package scale

import "io"

// BytesWriter is the fixed-capacity sink behind MarshalTo. It never grows B:
// a write that does not fit is copied as far as it goes and reports
// io.ErrShortWrite.
type BytesWriter struct {
	B []byte // destination, full capacity
	N int    // bytes written
}

func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

// put copies src into the free tail of B.
func put[S ~[]byte | ~string](w *BytesWriter, src S) (int, error) {
	n := copy(w.B[w.N:], src)
	w.N += n
	if n < len(src) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (w *BytesWriter) Write(p []byte) (int, error)       { return put(w, p) }
func (w *BytesWriter) WriteString(s string) (int, error) { return put(w, s) }

func (w *BytesWriter) WriteByte(c byte) error {
	if w.Available() == 0 {
		return io.ErrShortWrite
	}
	w.B[w.N] = c
	w.N++
	return nil
}

// Reset rewinds the sink so B can be filled again.
func (w *BytesWriter) Reset() { w.N = 0 }

func (w *BytesWriter) Len() int       { return w.N }
func (w *BytesWriter) Size() int      { return len(w.B) }
func (w *BytesWriter) Available() int { return len(w.B) - w.N }

// Bytes returns the written prefix of B, not a copy.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }

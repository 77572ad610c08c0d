package scale

import "io"

type (
	// byteWriterAdapter gives a plain io.Writer the single-byte path the Writer needs.
	byteWriterAdapter struct {
		io.Writer
		one [1]byte
	}
	// countingSink discards everything and remembers how much it was given.
	countingSink struct{ n int64 }
)

func (w *byteWriterAdapter) WriteByte(c byte) error {
	w.one[0] = c
	n, err := w.Writer.Write(w.one[:])
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}

func (w *countingSink) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

func (w *countingSink) WriteString(s string) (int, error) {
	w.n += int64(len(s))
	return len(s), nil
}

func (w *countingSink) WriteByte(byte) error {
	w.n++
	return nil
}

package scale

import "io"

// BytesReader is a cursor over a borrowed byte slice.
// It never copies B; callers must not mutate B while a decode is running.
type BytesReader struct {
	B []byte // input
	N int    // cursor, 0 <= N <= len(B)
}

func NewBytesReader(b []byte) *BytesReader { return &BytesReader{B: b} }

func (r *BytesReader) ReadByte() (byte, error) {
	if r.Available() == 0 {
		return 0, io.EOF
	}
	r.N++
	return r.B[r.N-1], nil
}

// Next returns a view of the next n bytes and advances past them.
// The view's capacity ends at n so appends cannot clobber later input.
// It returns nil and leaves the cursor untouched if fewer than n bytes remain.
func (r *BytesReader) Next(n int) []byte {
	if n < 0 || n > r.Available() {
		return nil
	}
	start := r.N
	r.N += n
	return r.B[start:r.N:r.N]
}

func (r *BytesReader) Available() int { return max(len(r.B)-r.N, 0) }

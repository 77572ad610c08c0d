package scale

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
)

// sink is the append-only byte destination behind a Writer.
type sink interface {
	io.Writer
	io.ByteWriter
}

// Writer is the encoding context. It appends to a sink and tracks the first
// error that occurs. After an error, all subsequent write operations become no-ops.
//
// Bytes already written are never revisited. A Writer is not safe for concurrent use.
type Writer struct {
	w     sink
	count int64 // total bytes written
	err   error // first error encountered.
}

// NewWriter creates a Writer appending to w.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch sw := w.(type) {
	// Nested writers share the sink so counts stay local to each context.
	case *Writer:
		return &Writer{w: sw.w}, nil
	case *BytesWriter:
		return &Writer{w: sw}, nil
	case *bytes.Buffer:
		return &Writer{w: sw}, nil
	case sink:
		return &Writer{w: sw}, nil
	}
	return &Writer{w: &byteWriterAdapter{Writer: w}}, nil
}

// NewBufferWriter creates a Writer over a growable in-memory buffer.
// The encoded bytes are available from Bytes.
func NewBufferWriter(sizeHint int) *Writer {
	return &Writer{w: bytes.NewBuffer(make([]byte, 0, sizeHint))}
}

// newCountingWriter creates a Writer that only measures what would be written.
func newCountingWriter() *Writer {
	return &Writer{w: &countingSink{}}
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteString implements the io.StringWriter interface.
func (w *Writer) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	if sw, ok := w.w.(io.StringWriter); ok {
		n, err := sw.WriteString(str)
		w.count += int64(n)
		w.setError(err)
		return n, w.err
	}
	return w.Write([]byte(str))
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// Fail records err unless an earlier error is already latched.
func (w *Writer) Fail(err error) {
	w.setError(err)
}

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	return w.count, w.err
}

// Bytes returns the encoded bytes when the sink is an in-memory buffer.
func (w *Writer) Bytes() []byte {
	switch b := w.w.(type) {
	case *bytes.Buffer:
		return b.Bytes()
	case *BytesWriter:
		return b.Bytes()
	}
	return nil
}

// WriteByte writes a single raw byte. It implements [io.ByteWriter].
func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.w.WriteByte(v)
	if err == nil {
		w.count++
	} else {
		w.err = err
	}
	return err
}

// WriteBytes writes raw bytes with no length prefix.
func (w *Writer) WriteBytes(buf []byte) {
	_, _ = w.Write(buf)
}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		_ = w.WriteByte(1)
	} else {
		_ = w.WriteByte(0)
	}
}

func (w *Writer) WriteUint8(v uint8) {
	_ = w.WriteByte(v)
}

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint128(v Uint128) {
	if w.err != nil {
		return
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:], v.Lo)
	binary.LittleEndian.PutUint64(buf[8:], v.Hi)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt8(v int8) {
	_ = w.WriteByte(uint8(v))
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteInt128(v Int128) {
	w.WriteUint128(Uint128{Lo: v.Lo, Hi: uint64(v.Hi)})
}

// WriteFixed writes v as an unsigned little-endian integer of the given width
// in bits (8, 16, 32 or 64). A value that does not fit fails with ErrOverflow.
func (w *Writer) WriteFixed(bits int, v uint64) {
	if w.err != nil {
		return
	}
	size, ok := fixedWidth(bits, 64)
	if !ok {
		w.setError(fmt.Errorf("%w: unsupported width %d", ErrOverflow, bits))
		return
	}
	if bits < 64 && v>>uint(bits) != 0 {
		w.setError(fmt.Errorf("%w: %d does not fit in u%d", ErrOverflow, v, bits))
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = w.Write(buf[:size])
}

// WriteFixedSigned writes v in two's complement with the given width in bits.
func (w *Writer) WriteFixedSigned(bits int, v int64) {
	if w.err != nil {
		return
	}
	if _, ok := fixedWidth(bits, 64); !ok {
		w.setError(fmt.Errorf("%w: unsupported width %d", ErrOverflow, bits))
		return
	}
	if bits < 64 {
		lo, hi := -int64(1)<<uint(bits-1), int64(1)<<uint(bits-1)-1
		if v < lo || v > hi {
			w.setError(fmt.Errorf("%w: %d does not fit in i%d", ErrOverflow, v, bits))
			return
		}
		v &= int64(1)<<uint(bits) - 1
	}
	w.WriteFixed(bits, uint64(v))
}

// WriteFixedBig writes a non-negative v as an unsigned little-endian integer of
// up to 128 bits.
func (w *Writer) WriteFixedBig(bits int, v *big.Int) {
	if w.err != nil {
		return
	}
	size, ok := fixedWidth(bits, 128)
	if !ok {
		w.setError(fmt.Errorf("%w: unsupported width %d", ErrOverflow, bits))
		return
	}
	if v.Sign() < 0 || v.BitLen() > bits {
		w.setError(fmt.Errorf("%w: %s does not fit in u%d", ErrOverflow, v, bits))
		return
	}
	_, _ = w.Write(littleEndian(v, size))
}

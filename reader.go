package scale

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Reader is the decoding context. It advances a cursor over a borrowed
// byte slice and tracks the first error. Subsequent reads become no-ops
// and leave their destinations untouched.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src     *BytesReader
	err     error // first error encountered.
	profile Profile
}

// NewReader creates a Reader over data. The slice is borrowed, not copied.
func NewReader(data []byte, opts ...ReaderOption) *Reader {
	r := &Reader{src: NewBytesReader(data), profile: DefaultProfile}
	for _, opt := range opts {
		opt(&r.profile)
	}
	return r
}

// WithProfile replaces the decoding profile and returns the reader for chaining.
func (r *Reader) WithProfile(p Profile) *Reader {
	r.profile = p
	return r
}

// WithStrictCompact enables rejection of non-minimal compact integers.
func (r *Reader) WithStrictCompact() *Reader {
	r.profile.StrictCompact = true
	return r
}

func (r *Reader) Profile() Profile { return r.profile }
func (r *Reader) Pos() int         { return r.src.N }
func (r *Reader) Remaining() int   { return r.src.Available() }
func (r *Reader) HasNext() bool    { return r.err == nil && r.src.Available() > 0 }
func (r *Reader) Err() error       { return r.err }

// Fail records err unless an earlier error is already latched.
// Codecs use it to surface their own validation failures.
func (r *Reader) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Result returns the number of bytes consumed and the final error state.
func (r *Reader) Result() (int, error) {
	return r.src.N, r.err
}

// need latches an end-of-input error when fewer than n bytes remain.
func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n > r.src.Available() {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrEndOfInput, n, r.src.N, r.src.Available())
		return false
	}
	return true
}

// ReadByte reads a single raw byte. It implements [io.ByteReader].
func (r *Reader) ReadByte() (byte, error) {
	if !r.need(1) {
		return 0, r.err
	}
	b, _ := r.src.ReadByte()
	return b, nil
}

// Next returns a view of the next n bytes of the borrowed input.
// The view aliases the source slice; copy it if it must outlive the input.
func (r *Reader) Next(n int) []byte {
	if n < 0 {
		r.Fail(fmt.Errorf("%w: negative length %d", ErrOversizedLength, n))
		return nil
	}
	if !r.need(n) {
		return nil
	}
	return r.src.Next(n)
}

// ReadBytes reads exactly n bytes and returns them in a new slice.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.Next(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadBytesTo fills dest completely from the input.
func (r *Reader) ReadBytesTo(dest []byte) {
	if b := r.Next(len(dest)); b != nil {
		copy(dest, b)
	}
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	_ = r.Next(n)
}

// --- Primitive Read Operations ---

func (r *Reader) ReadBool(dest *bool) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case 0:
		*dest = false
	case 1:
		*dest = true
	default:
		r.Fail(fmt.Errorf("%w: 0x%02x at offset %d", ErrInvalidBool, b, r.src.N-1))
	}
}

func (r *Reader) ReadUint8(dest *uint8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = b
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	if buf := r.Next(2); buf != nil {
		*dest = binary.LittleEndian.Uint16(buf)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	if buf := r.Next(4); buf != nil {
		*dest = binary.LittleEndian.Uint32(buf)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	if buf := r.Next(8); buf != nil {
		*dest = binary.LittleEndian.Uint64(buf)
	}
}

func (r *Reader) ReadUint128(dest *Uint128) {
	if buf := r.Next(16); buf != nil {
		dest.Lo = binary.LittleEndian.Uint64(buf)
		dest.Hi = binary.LittleEndian.Uint64(buf[8:])
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = int8(b)
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	if buf := r.Next(2); buf != nil {
		*dest = int16(binary.LittleEndian.Uint16(buf))
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	if buf := r.Next(4); buf != nil {
		*dest = int32(binary.LittleEndian.Uint32(buf))
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	if buf := r.Next(8); buf != nil {
		*dest = int64(binary.LittleEndian.Uint64(buf))
	}
}

func (r *Reader) ReadInt128(dest *Int128) {
	if buf := r.Next(16); buf != nil {
		dest.Lo = binary.LittleEndian.Uint64(buf)
		dest.Hi = int64(binary.LittleEndian.Uint64(buf[8:]))
	}
}

// ReadFixed reads an unsigned little-endian integer of the given width in bits
// (8, 16, 32 or 64).
func (r *Reader) ReadFixed(bits int, dest *uint64) {
	size, ok := fixedWidth(bits, 64)
	if !ok {
		r.Fail(fmt.Errorf("%w: unsupported width %d", ErrOverflow, bits))
		return
	}
	if buf := r.Next(size); buf != nil {
		*dest = leUint(buf)
	}
}

// ReadFixedSigned reads a two's complement little-endian integer of the given
// width in bits and sign-extends it.
func (r *Reader) ReadFixedSigned(bits int, dest *int64) {
	var u uint64
	r.ReadFixed(bits, &u)
	if r.err == nil {
		shift := uint(64 - bits)
		*dest = int64(u<<shift) >> shift
	}
}

// ReadFixedBig reads an unsigned little-endian integer of up to 128 bits.
func (r *Reader) ReadFixedBig(bits int, dest *big.Int) {
	size, ok := fixedWidth(bits, 128)
	if !ok {
		r.Fail(fmt.Errorf("%w: unsupported width %d", ErrOverflow, bits))
		return
	}
	if buf := r.Next(size); buf != nil {
		setLittleEndian(dest, buf)
	}
}

func leUint(buf []byte) uint64 {
	var v uint64
	for i := len(buf) - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

func fixedWidth(bits, max int) (int, bool) {
	switch bits {
	case 8, 16, 32, 64:
		return bits / 8, true
	case 128:
		return 16, max >= 128
	}
	return 0, false
}

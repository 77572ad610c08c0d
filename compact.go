package scale

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// Compact integer modes, selected by the low two bits of the first byte.
const (
	compactSingleByte = 0b00
	compactTwoByte    = 0b01
	compactFourByte   = 0b10
	compactBigInteger = 0b11
)

const (
	compactSingleMax = 1<<6 - 1
	compactTwoMax    = 1<<14 - 1
	compactFourMax   = 1<<30 - 1

	// compactMaxBytes is the longest big-integer payload the header can describe.
	compactMaxBytes = 0b111111 + 4
)

// CompactSize returns the number of bytes WriteCompact emits for v.
func CompactSize(v uint64) int {
	switch {
	case v <= compactSingleMax:
		return 1
	case v <= compactTwoMax:
		return 2
	case v <= compactFourMax:
		return 4
	}
	return 1 + (bits.Len64(v)+7)/8
}

// WriteCompact writes v in its minimal compact form.
func (w *Writer) WriteCompact(v uint64) {
	if w.err != nil {
		return
	}
	switch {
	case v <= compactSingleMax:
		_ = w.WriteByte(byte(v<<2) | compactSingleByte)
	case v <= compactTwoMax:
		w.WriteUint16(uint16(v<<2) | compactTwoByte)
	case v <= compactFourMax:
		w.WriteUint32(uint32(v<<2) | compactFourByte)
	default:
		n := (bits.Len64(v) + 7) / 8
		var buf [9]byte
		buf[0] = byte(n-4)<<2 | compactBigInteger
		binary.LittleEndian.PutUint64(buf[1:], v)
		_, _ = w.Write(buf[:1+n])
	}
}

// WriteCompactBig writes a non-negative v of up to 536 bits in its minimal compact form.
func (w *Writer) WriteCompactBig(v *big.Int) {
	if w.err != nil {
		return
	}
	if v.Sign() < 0 {
		w.setError(fmt.Errorf("%w: compact integers are unsigned, got %s", ErrOverflow, v))
		return
	}
	if v.IsUint64() {
		w.WriteCompact(v.Uint64())
		return
	}
	n := (v.BitLen() + 7) / 8
	if n > compactMaxBytes {
		w.setError(fmt.Errorf("%w: compact integer needs %d bytes, max %d", ErrOverflow, n, compactMaxBytes))
		return
	}
	_ = w.WriteByte(byte(n-4)<<2 | compactBigInteger)
	_, _ = w.Write(littleEndian(v, n))
}

// readCompactHeader decodes the modes that fit in 32 bits and, for the
// big-integer mode, returns the payload view instead.
func (r *Reader) readCompactHeader() (small uint64, payload []byte, ok bool) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, nil, false
	}
	start := r.Pos() - 1
	switch b0 & 0b11 {
	case compactSingleByte:
		return uint64(b0 >> 2), nil, true
	case compactTwoByte:
		b := r.Next(1)
		if b == nil {
			return 0, nil, false
		}
		v := uint64(uint16(b0)|uint16(b[0])<<8) >> 2
		if r.profile.StrictCompact && v <= compactSingleMax {
			r.Fail(fmt.Errorf("%w: %d in two-byte mode at offset %d", ErrNonCanonical, v, start))
			return 0, nil, false
		}
		return v, nil, true
	case compactFourByte:
		b := r.Next(3)
		if b == nil {
			return 0, nil, false
		}
		v := uint64(uint32(b0)|uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 2
		if r.profile.StrictCompact && v <= compactTwoMax {
			r.Fail(fmt.Errorf("%w: %d in four-byte mode at offset %d", ErrNonCanonical, v, start))
			return 0, nil, false
		}
		return v, nil, true
	}
	n := int(b0>>2) + 4
	payload = r.Next(n)
	if payload == nil {
		return 0, nil, false
	}
	if r.profile.StrictCompact && !minimalBigPayload(payload) {
		r.Fail(fmt.Errorf("%w: %d-byte big-integer payload at offset %d", ErrNonCanonical, n, start))
		return 0, nil, false
	}
	return 0, payload, true
}

// minimalBigPayload reports whether a big-integer payload uses the fewest bytes
// and holds a value the four-byte mode could not.
func minimalBigPayload(p []byte) bool {
	if p[len(p)-1] == 0 {
		return false
	}
	if len(p) > 4 {
		return true
	}
	return binary.LittleEndian.Uint32(p) > compactFourMax
}

// ReadCompact reads a compact integer that must fit in 64 bits.
func (r *Reader) ReadCompact(dest *uint64) {
	small, payload, ok := r.readCompactHeader()
	if !ok {
		return
	}
	if payload == nil {
		*dest = small
		return
	}
	for _, b := range payload[min(len(payload), 8):] {
		if b != 0 {
			r.Fail(fmt.Errorf("%w: compact integer of %d bytes exceeds u64", ErrOverflow, len(payload)))
			return
		}
	}
	*dest = leUint(payload[:min(len(payload), 8)])
}

// ReadCompactBig reads a compact integer of any size.
func (r *Reader) ReadCompactBig(dest *big.Int) {
	small, payload, ok := r.readCompactHeader()
	if !ok {
		return
	}
	if payload == nil {
		dest.SetUint64(small)
		return
	}
	setLittleEndian(dest, payload)
}

// ReadLength reads a compact sequence length and checks it against the input
// left. minElemSize is the smallest encoding of one element; zero when unknown.
// A length that cannot be satisfied by the remaining bytes, even allowing the
// profile's LengthSlack, fails with ErrOversizedLength.
func (r *Reader) ReadLength(minElemSize int) int {
	var n uint64
	r.ReadCompact(&n)
	if r.err != nil {
		return 0
	}
	capacity := uint64(r.Remaining())
	if minElemSize > 0 {
		capacity /= uint64(minElemSize)
	}
	if n > math.MaxInt32 || n > capacity+uint64(r.profile.LengthSlack) {
		r.Fail(fmt.Errorf("%w: %d elements declared with %d bytes left", ErrOversizedLength, n, r.Remaining()))
		return 0
	}
	return int(n)
}

// capHint bounds the preallocation for a declared length by what the input can hold.
func (r *Reader) capHint(n, minElemSize int) int {
	limit := r.Remaining()
	if minElemSize > 1 {
		limit /= minElemSize
	}
	return min(n, limit)
}

package scale

import (
	"fmt"
	"math/big"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Leaf codecs for the primitive types.
var (
	Bool Codec[bool]    = boolCodec{}
	U8   Codec[uint8]   = Int[uint8]()
	U16  Codec[uint16]  = Int[uint16]()
	U32  Codec[uint32]  = Int[uint32]()
	U64  Codec[uint64]  = Int[uint64]()
	U128 Codec[Uint128] = u128Codec{}
	I8   Codec[int8]    = Int[int8]()
	I16  Codec[int16]   = Int[int16]()
	I32  Codec[int32]   = Int[int32]()
	I64  Codec[int64]   = Int[int64]()
	I128 Codec[Int128]  = i128Codec{}

	// Compact is the compact integer codec for values that fit in 64 bits.
	Compact Codec[uint64] = CompactInt[uint64]()
	// CompactBig is the compact integer codec for values of any size.
	CompactBig Codec[*big.Int] = compactBigCodec{}
)

// CompactUint is a uint64 that Marshal and Unmarshal encode in compact form
// without a struct tag, for slices and options of compact integers.
type CompactUint uint64

type boolCodec struct{}

func (boolCodec) Write(w *Writer, v bool)    { w.WriteBool(v) }
func (boolCodec) Read(r *Reader, dest *bool) { r.ReadBool(dest) }
func (boolCodec) MinSize() int               { return 1 }

type intCodec[T constraints.Integer] struct {
	bits   int
	signed bool
}

// Int returns the fixed-width little-endian codec for any sized integer type,
// including named types such as `type Balance uint64`. The width is the Go
// type's width, so int, uint and uintptr take the platform word size and
// only round-trip between platforms of the same size.
func Int[T constraints.Integer]() Codec[T] {
	var zero T
	return intCodec[T]{bits: int(unsafe.Sizeof(zero)) * 8, signed: ^zero < 0}
}

func (c intCodec[T]) Write(w *Writer, v T) {
	if c.signed {
		w.WriteFixedSigned(c.bits, int64(v))
	} else {
		w.WriteFixed(c.bits, uint64(v))
	}
}

func (c intCodec[T]) Read(r *Reader, dest *T) {
	if c.signed {
		var v int64
		r.ReadFixedSigned(c.bits, &v)
		if r.Err() == nil {
			*dest = T(v)
		}
		return
	}
	var v uint64
	r.ReadFixed(c.bits, &v)
	if r.Err() == nil {
		*dest = T(v)
	}
}

func (c intCodec[T]) MinSize() int { return c.bits / 8 }

type u128Codec struct{}

func (u128Codec) Write(w *Writer, v Uint128)    { w.WriteUint128(v) }
func (u128Codec) Read(r *Reader, dest *Uint128) { r.ReadUint128(dest) }
func (u128Codec) MinSize() int                  { return 16 }

type i128Codec struct{}

func (i128Codec) Write(w *Writer, v Int128)    { w.WriteInt128(v) }
func (i128Codec) Read(r *Reader, dest *Int128) { r.ReadInt128(dest) }
func (i128Codec) MinSize() int                 { return 16 }

type compactIntCodec[T constraints.Unsigned] struct {
	bits int
}

// CompactInt returns the compact codec for an unsigned integer type.
// Decoding a value wider than T fails with ErrOverflow.
func CompactInt[T constraints.Unsigned]() Codec[T] {
	var zero T
	return compactIntCodec[T]{bits: int(unsafe.Sizeof(zero)) * 8}
}

func (c compactIntCodec[T]) Write(w *Writer, v T) { w.WriteCompact(uint64(v)) }

func (c compactIntCodec[T]) Read(r *Reader, dest *T) {
	var v uint64
	r.ReadCompact(&v)
	if r.Err() != nil {
		return
	}
	if c.bits < 64 && v>>uint(c.bits) != 0 {
		r.Fail(fmt.Errorf("%w: compact %d does not fit in u%d", ErrOverflow, v, c.bits))
		return
	}
	*dest = T(v)
}

func (compactIntCodec[T]) MinSize() int { return 1 }

type compactBigCodec struct{}

func (compactBigCodec) Write(w *Writer, v *big.Int) {
	if v == nil {
		w.Fail(fmt.Errorf("%w: nil *big.Int", ErrTypeMismatch))
		return
	}
	w.WriteCompactBig(v)
}

func (compactBigCodec) Read(r *Reader, dest **big.Int) {
	v := new(big.Int)
	r.ReadCompactBig(v)
	if r.Err() == nil {
		*dest = v
	}
}

func (compactBigCodec) MinSize() int { return 1 }

type compactU128Codec struct{}

// CompactU128 is the compact codec for 128-bit unsigned values.
var CompactU128 Codec[Uint128] = compactU128Codec{}

func (compactU128Codec) Write(w *Writer, v Uint128) {
	if v.IsUint64() {
		w.WriteCompact(v.Lo)
		return
	}
	w.WriteCompactBig(v.Big())
}

func (compactU128Codec) Read(r *Reader, dest *Uint128) {
	v := new(big.Int)
	r.ReadCompactBig(v)
	if r.Err() != nil {
		return
	}
	u, err := Uint128FromBig(v)
	if err != nil {
		r.Fail(err)
		return
	}
	*dest = u
}

func (compactU128Codec) MinSize() int { return 1 }

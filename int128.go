package scale

import (
	"fmt"
	"math/big"
)

// Uint128 is an unsigned 128-bit integer, encoded as Lo then Hi, each little-endian.
type Uint128 struct {
	Lo, Hi uint64
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Lo uint64
	Hi int64
}

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

func NewUint128(v uint64) Uint128 { return Uint128{Lo: v} }

func NewInt128(v int64) Int128 { return Int128{Lo: uint64(v), Hi: v >> 63} }

// Uint128FromBig converts v, failing with ErrOverflow outside [0, 2^128).
func Uint128FromBig(v *big.Int) (Uint128, error) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("%w: %s does not fit in u128", ErrOverflow, v)
	}
	b := littleEndian(v, 16)
	return Uint128{Lo: leUint(b[:8]), Hi: leUint(b[8:])}, nil
}

// Int128FromBig converts v, failing with ErrOverflow outside [-2^127, 2^127).
func Int128FromBig(v *big.Int) (Int128, error) {
	if v.Sign() >= 0 {
		if v.BitLen() > 127 {
			return Int128{}, fmt.Errorf("%w: %s does not fit in i128", ErrOverflow, v)
		}
		u, _ := Uint128FromBig(v)
		return Int128{Lo: u.Lo, Hi: int64(u.Hi)}, nil
	}
	// -2^127 has BitLen 128 once negated and is the only such value in range.
	abs := new(big.Int).Neg(v)
	if abs.BitLen() > 128 || (abs.BitLen() == 128 && abs.TrailingZeroBits() != 127) {
		return Int128{}, fmt.Errorf("%w: %s does not fit in i128", ErrOverflow, v)
	}
	u, _ := Uint128FromBig(new(big.Int).Add(two128, v))
	return Int128{Lo: u.Lo, Hi: int64(u.Hi)}, nil
}

func (u Uint128) Big() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) IsUint64() bool { return u.Hi == 0 }

func (u Uint128) String() string { return u.Big().String() }

func (i Int128) Big() *big.Int {
	v := Uint128{Lo: i.Lo, Hi: uint64(i.Hi)}.Big()
	if i.Hi < 0 {
		v.Sub(v, two128)
	}
	return v
}

func (i Int128) String() string { return i.Big().String() }

// littleEndian returns the magnitude of v as exactly size little-endian bytes.
// The caller guarantees the magnitude fits.
func littleEndian(v *big.Int, size int) []byte {
	out := make([]byte, size)
	v.FillBytes(out)
	for i, j := 0, size-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// setLittleEndian sets dest to the unsigned value of buf read little-endian.
func setLittleEndian(dest *big.Int, buf []byte) {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	dest.SetBytes(be)
}

package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOption(t *testing.T) {
	c := Option(U8)

	data, err := Encode(c, None[uint8]())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, data)

	data, err = Encode(c, Some[uint8](42))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x2A}, data)

	got, err := Decode(c, data)
	require.NoError(t, err)
	assert.Equal(t, Some[uint8](42), got)

	got, err = Decode(c, []byte{0x00})
	require.NoError(t, err)
	assert.False(t, got.Valid)

	_, err = Decode(c, []byte{0x02, 0x2A})
	assert.ErrorIs(t, err, ErrInvalidDiscriminant)

	_, err = Decode(c, []byte{0x01})
	assert.ErrorIs(t, err, ErrEndOfInput)
}

func TestOptionBool(t *testing.T) {
	for want, v := range map[byte]Optional[bool]{
		0: None[bool](),
		1: Some(true),
		2: Some(false),
	} {
		data, err := Encode(OptionBool, v)
		require.NoError(t, err)
		assert.Equal(t, []byte{want}, data)

		got, err := Decode(OptionBool, data)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := Decode(OptionBool, []byte{3})
	assert.ErrorIs(t, err, ErrInvalidDiscriminant)
}

func TestResult(t *testing.T) {
	c := Result(U32, String)

	data, err := Encode(c, Ok[uint32, string](7))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 7, 0, 0, 0}, data)

	data, err = Encode(c, Failed[uint32]("no"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x08, 'n', 'o'}, data)

	got, err := Decode(c, data)
	require.NoError(t, err)
	assert.True(t, got.IsErr)
	assert.Equal(t, "no", got.Err)

	_, err = Decode(c, []byte{0x02})
	assert.ErrorIs(t, err, ErrInvalidDiscriminant)
}

func TestSequence(t *testing.T) {
	c := Sequence(U8)

	data, err := Encode(c, []uint8{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0c, 0x01, 0x02, 0x03}, data)

	got, err := Decode(c, data)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3}, got)

	empty, err := Decode(c, []byte{0x00})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	t.Run("LengthPastInput", func(t *testing.T) {
		// Ten elements declared, two bytes present.
		_, err := Decode(c, []byte{0x28, 0x01, 0x02})
		assert.ErrorIs(t, err, ErrEndOfInput)
		assert.NotErrorIs(t, err, ErrOversizedLength)
	})

	t.Run("OversizedLength", func(t *testing.T) {
		// 2^32 elements.
		_, err := Decode(c, []byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x01})
		assert.ErrorIs(t, err, ErrOversizedLength)
	})

	t.Run("SlackIsConfigurable", func(t *testing.T) {
		_, err := Decode(c, []byte{0x28, 0x01, 0x02}, WithLengthSlack(0))
		assert.ErrorIs(t, err, ErrOversizedLength)
	})

	t.Run("ElementSizeScalesBound", func(t *testing.T) {
		// Three u64s cannot fit in 16 bytes.
		in := append([]byte{0x0c}, make([]byte, 16)...)
		_, err := Decode(Sequence(U64), in, WithLengthSlack(0))
		assert.ErrorIs(t, err, ErrOversizedLength)

		_, err = Decode(Sequence(U64), in)
		assert.ErrorIs(t, err, ErrEndOfInput)
	})

	t.Run("ElementErrorStops", func(t *testing.T) {
		_, err := Decode(Sequence(Bool), []byte{0x08, 0x01, 0x05})
		assert.ErrorIs(t, err, ErrInvalidBool)
	})
}

func TestFixedArray(t *testing.T) {
	c := FixedArray(U16, 2)

	data, err := Encode(c, []uint16{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, data)

	got, err := Decode(c, data)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2}, got)

	_, err = Encode(c, []uint16{1})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assert.Equal(t, 4, c.(MinSizer).MinSize())
}

func TestFixedArrayBounds(t *testing.T) {
	neg := FixedArray(U8, -1)
	assert.NotPanics(t, func() {
		_, err := Decode(neg, nil)
		assert.ErrorIs(t, err, ErrOversizedLength)
	})
	_, err := Encode(neg, nil)
	assert.ErrorIs(t, err, ErrOversizedLength)

	huge := FixedArray(U64, math.MaxInt/8)
	assert.NotPanics(t, func() {
		_, err := Decode(huge, []byte{0x01})
		assert.ErrorIs(t, err, ErrEndOfInput)
	})
	assert.Zero(t, huge.(MinSizer).MinSize())

	// Zero-size elements cannot be bounded by the input, so they are grown
	// one by one instead of preallocated.
	empty := FixedArray(NoPayload[struct{}](), 1000)
	got, err := Decode(empty, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1000)
}

func TestBytesAndStrings(t *testing.T) {
	data, err := Encode(Bytes, []byte{0xAB, 0xCD})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0xAB, 0xCD}, data)

	b, err := Decode(Bytes, data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0xCD}, b)

	data, err = Encode(String, "héllo")
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x18}, "héllo"...), data)

	s, err := Decode(String, data)
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	raw, err := Decode(Raw(2), []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, raw)

	_, err = Encode(Raw(2), []byte{1})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// Lax strings carry arbitrary bytes, strict ones insist on UTF-8.
	bad := []byte{0x04, 0xFF}
	_, err = Decode(String, bad)
	assert.NoError(t, err)
	_, err = Decode(ValidString, bad)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

type point struct {
	Tag  uint8
	Flag bool
}

var pointCodec = Struct(
	Field(U8, func(p *point) *uint8 { return &p.Tag }),
	Field(Bool, func(p *point) *bool { return &p.Flag }),
)

func TestStruct(t *testing.T) {
	data, err := Encode(pointCodec, point{Tag: 7, Flag: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x01}, data)

	got, err := Decode(pointCodec, data)
	require.NoError(t, err)
	assert.Equal(t, point{Tag: 7, Flag: true}, got)

	dest := point{Tag: 99}
	r := NewReader([]byte{0x07, 0x02})
	pointCodec.Read(r, &dest)
	assert.ErrorIs(t, r.Err(), ErrInvalidBool)
	assert.Equal(t, point{Tag: 99}, dest, "no partially decoded value")

	assert.Equal(t, 2, pointCodec.(MinSizer).MinSize())
}

func TestTuples(t *testing.T) {
	c := Tuple2(Compact, String)
	data, err := Encode(c, Pair[uint64, string]{First: 1, Second: "a"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x04, 'a'}, data)

	got, err := Decode(c, data)
	require.NoError(t, err)
	assert.Equal(t, Pair[uint64, string]{First: 1, Second: "a"}, got)

	c3 := Tuple3(Bool, I8, Option(U8))
	v := Triple[bool, int8, Optional[uint8]]{First: true, Second: -1, Third: Some[uint8](3)}
	data, err = Encode(c3, v)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xFF, 0x01, 0x03}, data)

	got3, err := Decode(c3, data)
	require.NoError(t, err)
	assert.Equal(t, v, got3)
}

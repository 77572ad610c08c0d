package scale

import (
	"bytes"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// header is a block-header-like payload used by the helper and benchmark tests.
type header struct {
	Parent []byte // 32 bytes
	Number uint64
	State  []byte // 32 bytes
	Digest [][]byte
}

var headerCodec = Struct(
	Field(Raw(32), func(h *header) *[]byte { return &h.Parent }),
	Field(Compact, func(h *header) *uint64 { return &h.Number }),
	Field(Raw(32), func(h *header) *[]byte { return &h.State }),
	Field(Sequence(Bytes), func(h *header) *[][]byte { return &h.Digest }),
)

func sampleHeader() header {
	h := header{
		Parent: make([]byte, 32),
		Number: 1_000_000,
		State:  make([]byte, 32),
		Digest: [][]byte{{1, 2, 3}, {}},
	}
	for i := range h.Parent {
		h.Parent[i] = byte(i)
		h.State[i] = byte(255 - i)
	}
	return h
}

func TestEncodeHelpers(t *testing.T) {
	h := sampleHeader()

	data, err := Encode(headerCodec, h)
	require.NoError(t, err)
	assert.Equal(t, len(data), Size(headerCodec, h))

	// The encoding must not alias the pooled buffer.
	again, err := Encode(headerCodec, h)
	require.NoError(t, err)
	assert.Equal(t, data, again)
	data[0] ^= 0xFF
	assert.NotEqual(t, data, again)
	data[0] ^= 0xFF

	var buf bytes.Buffer
	n, err := EncodeTo(headerCodec, h, &buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)
	assert.Equal(t, data, buf.Bytes())

	fixed := make([]byte, len(data))
	m, err := MarshalTo(headerCodec, h, fixed)
	require.NoError(t, err)
	assert.Equal(t, len(data), m)
	assert.Equal(t, data, fixed)

	_, err = MarshalTo(headerCodec, h, make([]byte, len(data)-1))
	assert.ErrorIs(t, err, io.ErrShortWrite)

	// Spare capacity past len(p) is off limits.
	backing := make([]byte, 2, 16)
	n2, err := MarshalTo(U64, 0x0102030405060708, backing)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 2, n2)
	assert.Equal(t, []byte{0x08, 0x07}, backing)
	assert.Zero(t, backing[:16][2])

	_, err = EncodeTo(headerCodec, h, nil)
	assert.ErrorIs(t, err, ErrNilIO)

	decoded, err := Decode(headerCodec, data)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)

	assert.Equal(t, -1, Size(FixedArray(U8, 2), []uint8{1}))
}

func TestDecodeHelper(t *testing.T) {
	data, err := Encode(Tuple2(U16, Bool), Pair[uint16, bool]{First: 513, Second: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x01}, data)

	_, err = Decode(U16, data)
	assert.ErrorIs(t, err, ErrTrailingData)

	v, err := Decode(U16, data, WithTrailingData())
	require.NoError(t, err)
	assert.Equal(t, uint16(513), v)

	_, err = Decode(U32, data)
	assert.ErrorIs(t, err, ErrEndOfInput)
}

func TestFuncCodec(t *testing.T) {
	type era struct{ Period, Phase uint8 }
	c := FuncMin(2,
		func(w *Writer, v era) {
			w.WriteUint8(v.Period)
			w.WriteUint8(v.Phase)
		},
		func(r *Reader, dest *era) {
			var v era
			r.ReadUint8(&v.Period)
			r.ReadUint8(&v.Phase)
			if r.Err() == nil {
				*dest = v
			}
		})

	data, err := Encode(c, era{Period: 64, Phase: 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{64, 3}, data)

	got, err := Decode(c, data)
	require.NoError(t, err)
	assert.Equal(t, era{Period: 64, Phase: 3}, got)
	assert.Equal(t, 2, c.(MinSizer).MinSize())

	plain := Func(c.Write, c.Read)
	assert.Zero(t, plain.(MinSizer).MinSize())
}

func TestCodecsAreSharable(t *testing.T) {
	c := Sequence(Tuple2(Compact, String))
	in := []Pair[uint64, string]{{First: 1, Second: "a"}, {First: 1 << 40, Second: "bc"}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := Encode(c, in)
			if !assert.NoError(t, err) {
				return
			}
			out, err := Decode(c, data)
			assert.NoError(t, err)
			assert.Equal(t, in, out)
		}()
	}
	wg.Wait()
}

func TestIntCodecNamedTypes(t *testing.T) {
	type balance uint64
	type delta int16
	bc, dc := Int[balance](), Int[delta]()

	data, err := Encode(bc, balance(7))
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 0, 0, 0, 0, 0, 0}, data)

	data, err = Encode(dc, delta(-3))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFD, 0xFF}, data)

	d, err := Decode(dc, data)
	require.NoError(t, err)
	assert.Equal(t, delta(-3), d)

	// Platform-sized kinds follow the word size.
	assert.Equal(t, strconv.IntSize/8, Int[int]().(MinSizer).MinSize())
	assert.Equal(t, strconv.IntSize/8, Int[uint]().(MinSizer).MinSize())
}

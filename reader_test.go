package scale

import (
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestSuccessfulReads() {
	data := []byte{
		0xAA,       // u8
		0xCC, 0xBB, // u16
		0x00, 0xFF, 0xEE, 0xDD, // u32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // u64
		0x01,       // bool
		0xFF,       // i8
		0xFE, 0xFF, // i16
		5, 6, 7, // raw
	}
	r := NewReader(data)

	var (
		u8  uint8
		u16 uint16
		u32 uint32
		u64 uint64
		b   bool
		i8  int8
		i16 int16
	)
	r.ReadUint8(&u8)
	r.ReadUint16(&u16)
	r.ReadUint32(&u32)
	r.ReadUint64(&u64)
	r.ReadBool(&b)
	r.ReadInt8(&i8)
	r.ReadInt16(&i16)
	raw := r.ReadBytes(3)

	n, err := r.Result()
	s.Require().NoError(err)
	s.Equal(len(data), n)
	s.Equal(uint8(0xAA), u8)
	s.Equal(uint16(0xBBCC), u16)
	s.Equal(uint32(0xDDEEFF00), u32)
	s.Equal(uint64(0x0102030405060708), u64)
	s.True(b)
	s.Equal(int8(-1), i8)
	s.Equal(int16(-2), i16)
	s.Equal([]byte{5, 6, 7}, raw)
	s.False(r.HasNext())
	s.Zero(r.Remaining())
}

func (s *ReaderTestSuite) TestErrorLatching() {
	r := NewReader([]byte{0x01, 0x02})

	var v uint32 = 0xCAFE
	r.ReadUint32(&v)
	s.Require().ErrorIs(r.Err(), ErrEndOfInput)
	s.ErrorIs(r.Err(), io.ErrUnexpectedEOF)
	s.Equal(uint32(0xCAFE), v, "a failed read must leave the destination untouched")
	s.Zero(r.Pos(), "a failed read must not advance the cursor")

	// Subsequent reads are no-ops, even ones that would fit.
	var b uint8 = 9
	r.ReadUint8(&b)
	s.Equal(uint8(9), b)
	s.Zero(r.Pos())

	// The first error is kept.
	r.Fail(errors.New("later"))
	s.ErrorIs(r.Err(), ErrEndOfInput)
}

func (s *ReaderTestSuite) TestInvalidBool() {
	r := NewReader([]byte{0x02})
	b := true
	r.ReadBool(&b)
	s.ErrorIs(r.Err(), ErrInvalidBool)
	s.True(b)
}

func (s *ReaderTestSuite) TestBorrowedViews() {
	data := []byte{1, 2, 3, 4}
	r := NewReader(data)

	view := r.Next(2)
	s.Require().NoError(r.Err())
	s.Equal([]byte{1, 2}, view)
	s.Equal(2, cap(view), "a view must not expose bytes past its end")

	cp := r.ReadBytes(2)
	data[0], data[2] = 9, 9
	s.Equal(byte(9), view[0], "Next aliases the input")
	s.Equal([]byte{3, 4}, cp, "ReadBytes copies")

	r.Next(-1)
	s.ErrorIs(r.Err(), ErrOversizedLength)
}

func (s *ReaderTestSuite) TestSkipAndReadBytesTo() {
	r := NewReader([]byte{0, 0, 7, 8})
	r.Skip(2)
	var dst [2]byte
	r.ReadBytesTo(dst[:])
	s.Require().NoError(r.Err())
	s.Equal([2]byte{7, 8}, dst)

	r.Skip(1)
	s.ErrorIs(r.Err(), ErrEndOfInput)
}

func (s *ReaderTestSuite) TestFixedWidths() {
	r := NewReader([]byte{0xFE, 0xFF, 0xFF, 0xFF, 0x2A, 0x00})

	var i int64
	r.ReadFixedSigned(32, &i)
	s.Require().NoError(r.Err())
	s.Equal(int64(-2), i)

	var u uint64
	r.ReadFixed(16, &u)
	s.Require().NoError(r.Err())
	s.Equal(uint64(42), u)

	r.ReadFixed(24, &u)
	s.ErrorIs(r.Err(), ErrOverflow)
}

func (s *ReaderTestSuite) TestFixedBig() {
	data := make([]byte, 16)
	data[15] = 0x80
	r := NewReader(data)
	v := new(big.Int)
	r.ReadFixedBig(128, v)
	s.Require().NoError(r.Err())
	s.Zero(new(big.Int).Lsh(big.NewInt(1), 127).Cmp(v))
}

func (s *ReaderTestSuite) TestProfileOptions() {
	r := NewReader(nil, WithStrictCompact(), WithLengthSlack(3), WithTrailingData())
	s.Equal(Profile{StrictCompact: true, LengthSlack: 3, AllowTrailing: true}, r.Profile())

	r = NewReader(nil).WithProfile(Profile{}).WithStrictCompact()
	s.Equal(Profile{StrictCompact: true}, r.Profile())

	r = NewReader(nil, WithLengthSlack(-1))
	s.Equal(DefaultProfile.LengthSlack, r.Profile().LengthSlack)
}

func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}

func TestBytesReader(t *testing.T) {
	br := NewBytesReader([]byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2}, br.Next(2))
	assert.Equal(t, 1, br.Available())

	assert.Nil(t, br.Next(2), "Next must not move past the end")
	assert.Nil(t, br.Next(-1))
	assert.Equal(t, 2, br.N)

	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(3), b)

	_, err = br.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, br.Available())
}

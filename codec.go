package scale

import (
	"bytes"
	"fmt"
	"io"
)

// Codec is the encode/decode capability for values of type T.
// Write and Read must be inverses for every value in T's domain.
//
// Both operations report failures through the context they are given:
// check Writer.Err or Reader.Err after the call. Read leaves dest untouched
// when it fails.
type Codec[T any] interface {
	Write(w *Writer, v T)
	Read(r *Reader, dest *T)
}

// MinSizer is implemented by codecs that know the smallest encoding of any value.
// Sequence decoding uses it to bound declared lengths against remaining input.
type MinSizer interface {
	MinSize() int
}

// Encoder is implemented by types that encode themselves.
type Encoder interface {
	EncodeScale(w *Writer)
}

// Decoder is implemented by types that decode themselves.
type Decoder interface {
	DecodeScale(r *Reader)
}

func minSize(c any) int {
	if m, ok := c.(MinSizer); ok {
		return m.MinSize()
	}
	return 0
}

type funcCodec[T any] struct {
	write func(*Writer, T)
	read  func(*Reader, *T)
	min   int
}

// Func builds a Codec from a write and a read function.
// It is the usual way to express a struct codec field by field.
func Func[T any](write func(w *Writer, v T), read func(r *Reader, dest *T)) Codec[T] {
	return &funcCodec[T]{write: write, read: read}
}

// FuncMin is Func for codecs whose values always encode to at least minSize bytes.
func FuncMin[T any](minSize int, write func(w *Writer, v T), read func(r *Reader, dest *T)) Codec[T] {
	return &funcCodec[T]{write: write, read: read, min: minSize}
}

func (c *funcCodec[T]) Write(w *Writer, v T)    { c.write(w, v) }
func (c *funcCodec[T]) Read(r *Reader, dest *T) { c.read(r, dest) }
func (c *funcCodec[T]) MinSize() int            { return c.min }

type selfCodec[T any, P interface {
	*T
	Encoder
	Decoder
}] struct{}

// Self returns the codec of a type that implements Encoder and Decoder on its pointer.
func Self[T any, P interface {
	*T
	Encoder
	Decoder
}]() Codec[T] {
	return selfCodec[T, P]{}
}

func (selfCodec[T, P]) Write(w *Writer, v T) { P(&v).EncodeScale(w) }

func (selfCodec[T, P]) Read(r *Reader, dest *T) {
	var v T
	P(&v).DecodeScale(r)
	if r.Err() == nil {
		*dest = v
	}
}

// Encode returns the encoding of v.
func Encode[T any](c Codec[T], v T) ([]byte, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	w := &Writer{w: buf}
	c.Write(w, v)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// EncodeTo writes the encoding of v to dst and returns the number of bytes written.
func EncodeTo[T any](c Codec[T], v T, dst io.Writer) (int64, error) {
	w, err := NewWriter(dst)
	if err != nil {
		return 0, err
	}
	c.Write(w, v)
	return w.Result()
}

// MarshalTo encodes v into p without allocating, failing with
// io.ErrShortWrite when len(p) is too small. Capacity beyond len(p) is never used.
func MarshalTo[T any](c Codec[T], v T, p []byte) (int, error) {
	w := &Writer{w: &BytesWriter{B: p}}
	c.Write(w, v)
	n, err := w.Result()
	return int(n), err
}

// Size returns the encoded size of v, or -1 when v cannot be encoded.
func Size[T any](c Codec[T], v T) int {
	w := newCountingWriter()
	c.Write(w, v)
	if w.Err() != nil {
		return -1
	}
	return int(w.Count())
}

// Decode decodes one value from data. Unless the options allow it, bytes left
// over after the value fail with ErrTrailingData.
func Decode[T any](c Codec[T], data []byte, opts ...ReaderOption) (T, error) {
	var v T
	r := NewReader(data, opts...)
	c.Read(r, &v)
	if err := r.Err(); err != nil {
		var zero T
		return zero, err
	}
	if !r.Profile().AllowTrailing && r.Remaining() > 0 {
		var zero T
		return zero, fmt.Errorf("%w: %d bytes left at offset %d", ErrTrailingData, r.Remaining(), r.Pos())
	}
	return v, nil
}

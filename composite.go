package scale

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Optional is a value that may be absent.
type Optional[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Valid: true} }
func None[T any]() Optional[T]    { return Optional[T]{} }

type optionCodec[T any] struct {
	elem Codec[T]
}

// Option encodes an absent value as 0x00 and a present one as 0x01 followed by
// the element's encoding. Any other tag byte is an invalid discriminant.
func Option[T any](elem Codec[T]) Codec[Optional[T]] {
	return optionCodec[T]{elem: elem}
}

func (c optionCodec[T]) Write(w *Writer, v Optional[T]) {
	if !v.Valid {
		_ = w.WriteByte(0)
		return
	}
	_ = w.WriteByte(1)
	c.elem.Write(w, v.Value)
}

func (c optionCodec[T]) Read(r *Reader, dest *Optional[T]) {
	tag, err := r.ReadByte()
	if err != nil {
		return
	}
	switch tag {
	case 0:
		*dest = Optional[T]{}
	case 1:
		var v T
		c.elem.Read(r, &v)
		if r.Err() == nil {
			*dest = Optional[T]{Value: v, Valid: true}
		}
	default:
		r.Fail(fmt.Errorf("%w: option tag %d at offset %d", ErrInvalidDiscriminant, tag, r.Pos()-1))
	}
}

func (optionCodec[T]) MinSize() int { return 1 }

type optionBoolCodec struct{}

// OptionBool packs an optional boolean into one byte:
// 0 = None, 1 = Some(true), 2 = Some(false).
var OptionBool Codec[Optional[bool]] = optionBoolCodec{}

func (optionBoolCodec) Write(w *Writer, v Optional[bool]) {
	switch {
	case !v.Valid:
		_ = w.WriteByte(0)
	case v.Value:
		_ = w.WriteByte(1)
	default:
		_ = w.WriteByte(2)
	}
}

func (optionBoolCodec) Read(r *Reader, dest *Optional[bool]) {
	tag, err := r.ReadByte()
	if err != nil {
		return
	}
	switch tag {
	case 0:
		*dest = Optional[bool]{}
	case 1:
		*dest = Some(true)
	case 2:
		*dest = Some(false)
	default:
		r.Fail(fmt.Errorf("%w: optional bool tag %d at offset %d", ErrInvalidDiscriminant, tag, r.Pos()-1))
	}
}

func (optionBoolCodec) MinSize() int { return 1 }

// Outcome is a two-variant success-or-failure value.
type Outcome[T, E any] struct {
	Ok    T
	Err   E
	IsErr bool
}

func Ok[T, E any](v T) Outcome[T, E]     { return Outcome[T, E]{Ok: v} }
func Failed[T, E any](e E) Outcome[T, E] { return Outcome[T, E]{Err: e, IsErr: true} }

type resultCodec[T, E any] struct {
	ok  Codec[T]
	err Codec[E]
}

// Result encodes variant 0 (Ok) followed by T, or variant 1 (Err) followed by E.
func Result[T, E any](ok Codec[T], err Codec[E]) Codec[Outcome[T, E]] {
	return resultCodec[T, E]{ok: ok, err: err}
}

func (c resultCodec[T, E]) Write(w *Writer, v Outcome[T, E]) {
	if v.IsErr {
		_ = w.WriteByte(1)
		c.err.Write(w, v.Err)
		return
	}
	_ = w.WriteByte(0)
	c.ok.Write(w, v.Ok)
}

func (c resultCodec[T, E]) Read(r *Reader, dest *Outcome[T, E]) {
	tag, err := r.ReadByte()
	if err != nil {
		return
	}
	var out Outcome[T, E]
	switch tag {
	case 0:
		c.ok.Read(r, &out.Ok)
	case 1:
		out.IsErr = true
		c.err.Read(r, &out.Err)
	default:
		r.Fail(fmt.Errorf("%w: result tag %d at offset %d", ErrInvalidDiscriminant, tag, r.Pos()-1))
	}
	if r.Err() == nil {
		*dest = out
	}
}

func (resultCodec[T, E]) MinSize() int { return 1 }

type sequenceCodec[T any] struct {
	elem Codec[T]
}

// Sequence encodes a compact length followed by each element in order.
func Sequence[T any](elem Codec[T]) Codec[[]T] {
	return sequenceCodec[T]{elem: elem}
}

func (c sequenceCodec[T]) Write(w *Writer, v []T) {
	w.WriteCompact(uint64(len(v)))
	for _, e := range v {
		if w.Err() != nil {
			return
		}
		c.elem.Write(w, e)
	}
}

func (c sequenceCodec[T]) Read(r *Reader, dest *[]T) {
	elemSize := minSize(c.elem)
	n := r.ReadLength(elemSize)
	if r.Err() != nil {
		return
	}
	out := make([]T, 0, r.capHint(n, elemSize))
	for i := 0; i < n; i++ {
		var e T
		c.elem.Read(r, &e)
		if r.Err() != nil {
			return
		}
		out = append(out, e)
	}
	*dest = out
}

func (sequenceCodec[T]) MinSize() int { return 1 }

type fixedArrayCodec[T any] struct {
	elem Codec[T]
	n    int
}

// FixedArray encodes exactly n elements with no length prefix.
// Writing a slice of any other length fails with ErrTypeMismatch. A negative
// n yields a codec whose every read and write fails with ErrOversizedLength.
func FixedArray[T any](elem Codec[T], n int) Codec[[]T] {
	return fixedArrayCodec[T]{elem: elem, n: n}
}

func (c fixedArrayCodec[T]) Write(w *Writer, v []T) {
	if c.n < 0 {
		w.Fail(fmt.Errorf("%w: fixed array of %d elements", ErrOversizedLength, c.n))
		return
	}
	if len(v) != c.n {
		w.Fail(fmt.Errorf("%w: fixed array of %d given %d elements", ErrTypeMismatch, c.n, len(v)))
		return
	}
	for _, e := range v {
		if w.Err() != nil {
			return
		}
		c.elem.Write(w, e)
	}
}

func (c fixedArrayCodec[T]) Read(r *Reader, dest *[]T) {
	if r.Err() != nil {
		return
	}
	if c.n < 0 {
		r.Fail(fmt.Errorf("%w: fixed array of %d elements", ErrOversizedLength, c.n))
		return
	}
	elemSize := minSize(c.elem)
	if elemSize > 0 && c.n > r.Remaining()/elemSize {
		r.Fail(fmt.Errorf("%w: %d elements of at least %d bytes at offset %d, have %d",
			ErrEndOfInput, c.n, elemSize, r.Pos(), r.Remaining()))
		return
	}
	out := make([]T, 0, r.capHint(c.n, elemSize))
	for i := 0; i < c.n; i++ {
		var e T
		c.elem.Read(r, &e)
		if r.Err() != nil {
			return
		}
		out = append(out, e)
	}
	*dest = out
}

func (c fixedArrayCodec[T]) MinSize() int {
	elemSize := minSize(c.elem)
	if c.n <= 0 || elemSize > math.MaxInt32/c.n {
		return 0
	}
	return c.n * elemSize
}

type bytesCodec struct{}

// Bytes encodes a byte slice as a compact length followed by the raw bytes.
var Bytes Codec[[]byte] = bytesCodec{}

func (bytesCodec) Write(w *Writer, v []byte) {
	w.WriteCompact(uint64(len(v)))
	w.WriteBytes(v)
}

func (bytesCodec) Read(r *Reader, dest *[]byte) {
	n := r.ReadLength(1)
	if b := r.ReadBytes(n); r.Err() == nil {
		if b == nil {
			b = []byte{}
		}
		*dest = b
	}
}

func (bytesCodec) MinSize() int { return 1 }

type rawCodec struct {
	n int
}

// Raw encodes exactly n bytes with no length prefix.
func Raw(n int) Codec[[]byte] {
	return rawCodec{n: n}
}

func (c rawCodec) Write(w *Writer, v []byte) {
	if len(v) != c.n {
		w.Fail(fmt.Errorf("%w: raw block of %d given %d bytes", ErrTypeMismatch, c.n, len(v)))
		return
	}
	w.WriteBytes(v)
}

func (c rawCodec) Read(r *Reader, dest *[]byte) {
	if b := r.ReadBytes(c.n); r.Err() == nil {
		if b == nil {
			b = []byte{}
		}
		*dest = b
	}
}

func (c rawCodec) MinSize() int { return c.n }

type stringCodec struct{}

// String encodes text as its length-prefixed UTF-8 bytes with no terminator.
// Decoding does not validate UTF-8; see ValidString.
var String Codec[string] = stringCodec{}

func (stringCodec) Write(w *Writer, v string) {
	w.WriteCompact(uint64(len(v)))
	_, _ = w.WriteString(v)
}

func (stringCodec) Read(r *Reader, dest *string) {
	n := r.ReadLength(1)
	if b := r.Next(n); r.Err() == nil {
		*dest = string(b)
	}
}

func (stringCodec) MinSize() int { return 1 }

type validStringCodec struct{ stringCodec }

// ValidString is String that rejects text which is not valid UTF-8.
var ValidString Codec[string] = validStringCodec{}

func (validStringCodec) Read(r *Reader, dest *string) {
	start := r.Pos()
	var s string
	stringCodec{}.Read(r, &s)
	if r.Err() != nil {
		return
	}
	if !utf8.ValidString(s) {
		r.Fail(fmt.Errorf("%w: invalid UTF-8 in string at offset %d", ErrTypeMismatch, start))
		return
	}
	*dest = s
}

// Pair is a two-element tuple.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is a three-element tuple.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Tuple2 concatenates the encodings of both elements.
func Tuple2[A, B any](a Codec[A], b Codec[B]) Codec[Pair[A, B]] {
	return Struct(
		Field(a, func(p *Pair[A, B]) *A { return &p.First }),
		Field(b, func(p *Pair[A, B]) *B { return &p.Second }),
	)
}

// Tuple3 concatenates the encodings of all three elements.
func Tuple3[A, B, C any](a Codec[A], b Codec[B], c Codec[C]) Codec[Triple[A, B, C]] {
	return Struct(
		Field(a, func(t *Triple[A, B, C]) *A { return &t.First }),
		Field(b, func(t *Triple[A, B, C]) *B { return &t.Second }),
		Field(c, func(t *Triple[A, B, C]) *C { return &t.Third }),
	)
}

// FieldCodec encodes one field of a struct S.
type FieldCodec[S any] interface {
	writeField(w *Writer, s *S)
	readField(r *Reader, s *S)
	minSize() int
}

type field[S, F any] struct {
	codec Codec[F]
	get   func(*S) *F
}

// Field binds a codec to the struct field returned by get.
func Field[S, F any](c Codec[F], get func(*S) *F) FieldCodec[S] {
	return field[S, F]{codec: c, get: get}
}

func (f field[S, F]) writeField(w *Writer, s *S) { f.codec.Write(w, *f.get(s)) }
func (f field[S, F]) readField(r *Reader, s *S)  { f.codec.Read(r, f.get(s)) }
func (f field[S, F]) minSize() int               { return minSize(f.codec) }

type structCodec[S any] struct {
	fields []FieldCodec[S]
}

// Struct encodes each field in the given order with no separators or names.
func Struct[S any](fields ...FieldCodec[S]) Codec[S] {
	return structCodec[S]{fields: fields}
}

func (c structCodec[S]) Write(w *Writer, v S) {
	for _, f := range c.fields {
		if w.Err() != nil {
			return
		}
		f.writeField(w, &v)
	}
}

func (c structCodec[S]) Read(r *Reader, dest *S) {
	var v S
	for _, f := range c.fields {
		f.readField(r, &v)
		if r.Err() != nil {
			return
		}
	}
	*dest = v
}

func (c structCodec[S]) MinSize() int {
	n := 0
	for _, f := range c.fields {
		n += f.minSize()
	}
	return n
}

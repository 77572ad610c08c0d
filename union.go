package scale

import (
	"fmt"
	"reflect"
)

// Variant is one alternative of a tagged union: the discriminant and, for
// variants that carry data, the payload.
type Variant[T any] struct {
	Index uint8
	Value T
}

type noPayload[T any] struct{}

// NoPayload is the leaf codec of a variant that carries no data.
func NoPayload[T any]() Codec[T] { return noPayload[T]{} }

func (noPayload[T]) Write(*Writer, T) {}
func (noPayload[T]) Read(*Reader, *T) {}
func (noPayload[T]) MinSize() int     { return 0 }
func (noPayload[T]) trivial() bool    { return true }

type trivialCodec interface{ trivial() bool }

type unionEntry[T any] struct {
	codec Codec[T] // nil for a variant without payload
	ok    bool
}

// Union encodes a closed set of variants sharing the common type T.
// The discriminant is written as one raw byte and alone selects the leaf
// codec for the payload. The mapping is immutable after construction, so a
// Union may be shared by concurrent encodes.
type Union[T any] struct {
	entries []unionEntry[T]
}

var _ Codec[Variant[any]] = (*Union[any])(nil)

// NewUnion maps each position of mapping to the discriminant of the same value.
// A nil entry is a variant without payload. At most 256 variants are allowed.
func NewUnion[T any](mapping ...Codec[T]) (*Union[T], error) {
	if len(mapping) > 256 {
		return nil, fmt.Errorf("%w: %d variants, a discriminant byte holds 256", ErrInvalidUnion, len(mapping))
	}
	u := &Union[T]{entries: make([]unionEntry[T], len(mapping))}
	for i, c := range mapping {
		u.entries[i] = newUnionEntry(c)
	}
	return u, nil
}

// NewUnionMap builds a Union from a sparse discriminant mapping.
func NewUnionMap[T any](mapping map[uint8]Codec[T]) *Union[T] {
	size := 0
	for idx := range mapping {
		size = max(size, int(idx)+1)
	}
	u := &Union[T]{entries: make([]unionEntry[T], size)}
	for idx, c := range mapping {
		u.entries[idx] = newUnionEntry(c)
	}
	return u
}

func newUnionEntry[T any](c Codec[T]) unionEntry[T] {
	if t, ok := c.(trivialCodec); ok && t.trivial() {
		c = nil
	}
	return unionEntry[T]{codec: c, ok: true}
}

// Len returns one past the highest mapped discriminant.
func (u *Union[T]) Len() int { return len(u.entries) }

// Has reports whether idx has an entry in the mapping.
func (u *Union[T]) Has(idx uint8) bool {
	return int(idx) < len(u.entries) && u.entries[idx].ok
}

// Validate reports the discriminants below Len that have no entry, for
// callers that want every index of a dense enumeration to be covered.
func (u *Union[T]) Validate() error {
	var missing []int
	for i, e := range u.entries {
		if !e.ok {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: no codec for discriminants %v", ErrInvalidUnion, missing)
	}
	return nil
}

func (u *Union[T]) Write(w *Writer, v Variant[T]) {
	if w.Err() != nil {
		return
	}
	if !u.Has(v.Index) {
		w.Fail(fmt.Errorf("%w: %d is not mapped", ErrInvalidDiscriminant, v.Index))
		return
	}
	_ = w.WriteByte(v.Index)
	if c := u.entries[v.Index].codec; c != nil {
		c.Write(w, v.Value)
	}
}

func (u *Union[T]) Read(r *Reader, dest *Variant[T]) {
	idx, err := r.ReadByte()
	if err != nil {
		return
	}
	if !u.Has(idx) {
		r.Fail(fmt.Errorf("%w: %d at offset %d", ErrInvalidDiscriminant, idx, r.Pos()-1))
		return
	}
	out := Variant[T]{Index: idx}
	if c := u.entries[idx].codec; c != nil {
		c.Read(r, &out.Value)
		if r.Err() != nil {
			return
		}
	}
	*dest = out
}

func (u *Union[T]) MinSize() int { return 1 }

type asCodec[T, V any] struct {
	leaf Codec[V]
}

// As adapts the leaf codec of a concrete payload type V to the union's common
// type T. Writing a T whose dynamic value is not a V fails with ErrTypeMismatch.
func As[T, V any](leaf Codec[V]) Codec[T] {
	return asCodec[T, V]{leaf: leaf}
}

func (c asCodec[T, V]) Write(w *Writer, v T) {
	vv, ok := any(v).(V)
	if !ok {
		w.Fail(fmt.Errorf("%w: got %T, want %v", ErrTypeMismatch, v, reflect.TypeFor[V]()))
		return
	}
	c.leaf.Write(w, vv)
}

func (c asCodec[T, V]) Read(r *Reader, dest *T) {
	var v V
	c.leaf.Read(r, &v)
	if r.Err() != nil {
		return
	}
	t, ok := any(v).(T)
	if !ok {
		r.Fail(fmt.Errorf("%w: %T does not convert to %v", ErrTypeMismatch, v, reflect.TypeFor[T]()))
		return
	}
	*dest = t
}

func (c asCodec[T, V]) MinSize() int { return minSize(c.leaf) }

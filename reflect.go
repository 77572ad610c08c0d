package scale

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// planCache avoids rebuilding a type's encoding plan through reflection on
// every call. Plans are immutable once stored, so they are shared freely.
var planCache = xsync.NewMap[reflect.Type, *plan]()

var (
	bigIntPtrType = reflect.TypeFor[*big.Int]()
	bigIntType    = reflect.TypeFor[big.Int]()
	uint128Type   = reflect.TypeFor[Uint128]()
	int128Type    = reflect.TypeFor[Int128]()
	compactType   = reflect.TypeFor[CompactUint]()
	encoderType   = reflect.TypeFor[Encoder]()
	decoderType   = reflect.TypeFor[Decoder]()
)

// plan is the reflection-derived codec of one Go type.
// read is always given a settable value.
type plan struct {
	write func(w *Writer, v reflect.Value)
	read  func(r *Reader, v reflect.Value)
	min   int
}

// Marshal encodes v by reflection. Supported shapes:
//
//	bool, int8..int64, uint8..uint64   fixed width, little-endian
//	Uint128, Int128                    fixed 16 bytes
//	*big.Int, CompactUint              compact integer
//	string, []byte                     compact length + bytes
//	[]T                                compact length + elements
//	[N]T                               N elements, no prefix
//	*T                                 Option<T> (*bool uses the one-byte OptionBool form)
//	struct                             exported fields in declaration order
//	Encoder/Decoder implementations    their own encoding
//
// Struct tags: `scale:"-"` skips a field, `scale:"compact"` encodes an
// unsigned integer or Uint128 field as a compact integer. int, uint and
// uintptr are rejected because their width is platform dependent.
func Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: Marshal(nil)", ErrUnsupportedType)
	}
	rv := reflect.ValueOf(v)
	p, err := planFor(rv.Type())
	if err != nil {
		return nil, err
	}
	w := NewBufferWriter(64)
	p.write(w, rv)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Unmarshal decodes data into the value v points to. v is only modified
// when decoding succeeds.
func Unmarshal(data []byte, v any, opts ...ReaderOption) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal needs a non-nil pointer, got %T", ErrUnsupportedType, v)
	}
	t := rv.Elem().Type()
	p, err := planFor(t)
	if err != nil {
		return err
	}
	r := NewReader(data, opts...)
	tmp := reflect.New(t).Elem()
	p.read(r, tmp)
	if err := r.Err(); err != nil {
		return err
	}
	if !r.Profile().AllowTrailing && r.Remaining() > 0 {
		return fmt.Errorf("%w: %d bytes left at offset %d", ErrTrailingData, r.Remaining(), r.Pos())
	}
	rv.Elem().Set(tmp)
	return nil
}

type reflectCodec[T any] struct {
	p *plan
}

// Reflect returns a Codec for T derived by reflection, so reflected types can
// be composed with the generic combinators.
func Reflect[T any]() (Codec[T], error) {
	p, err := planFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return reflectCodec[T]{p: p}, nil
}

func (c reflectCodec[T]) Write(w *Writer, v T) {
	c.p.write(w, reflect.ValueOf(&v).Elem())
}

func (c reflectCodec[T]) Read(r *Reader, dest *T) {
	var v T
	c.p.read(r, reflect.ValueOf(&v).Elem())
	if r.Err() == nil {
		*dest = v
	}
}

func (c reflectCodec[T]) MinSize() int { return c.p.min }

func planFor(t reflect.Type) (*plan, error) {
	// Attempt to load from the concurrent-safe cache first for performance.
	if p, ok := planCache.Load(t); ok {
		return p, nil
	}
	visiting := make(map[reflect.Type]*plan)
	p, err := buildPlan(t, visiting)
	if err != nil {
		return nil, err
	}
	for vt, vp := range visiting {
		planCache.LoadOrStore(vt, vp)
	}
	return p, nil
}

// buildPlan fills in a plan for t. Types under construction are tracked in
// visiting so that recursive types resolve to the plan being built.
func buildPlan(t reflect.Type, visiting map[reflect.Type]*plan) (*plan, error) {
	if p, ok := planCache.Load(t); ok {
		return p, nil
	}
	if p, ok := visiting[t]; ok {
		return p, nil
	}
	p := &plan{}
	visiting[t] = p

	switch {
	case t == bigIntPtrType:
		p.compactBig()
		return p, nil
	case t == bigIntType:
		return nil, fmt.Errorf("%w: big.Int by value, use *big.Int", ErrUnsupportedType)
	case t == compactType:
		cp, err := compactPlan(t)
		if err != nil {
			return nil, err
		}
		*p = *cp
		return p, nil
	case t == uint128Type:
		p.write = func(w *Writer, v reflect.Value) { w.WriteUint128(v.Interface().(Uint128)) }
		p.read = func(r *Reader, v reflect.Value) {
			var u Uint128
			if r.ReadUint128(&u); r.Err() == nil {
				v.Set(reflect.ValueOf(u))
			}
		}
		p.min = 16
		return p, nil
	case t == int128Type:
		p.write = func(w *Writer, v reflect.Value) { w.WriteInt128(v.Interface().(Int128)) }
		p.read = func(r *Reader, v reflect.Value) {
			var i Int128
			if r.ReadInt128(&i); r.Err() == nil {
				v.Set(reflect.ValueOf(i))
			}
		}
		p.min = 16
		return p, nil
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(encoderType) && reflect.PointerTo(t).Implements(decoderType):
		p.selfCoded(t)
		return p, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		p.write = func(w *Writer, v reflect.Value) { w.WriteBool(v.Bool()) }
		p.read = func(r *Reader, v reflect.Value) {
			var b bool
			if r.ReadBool(&b); r.Err() == nil {
				v.SetBool(b)
			}
		}
		p.min = 1
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := t.Bits()
		p.write = func(w *Writer, v reflect.Value) { w.WriteFixedSigned(bits, v.Int()) }
		p.read = func(r *Reader, v reflect.Value) {
			var i int64
			if r.ReadFixedSigned(bits, &i); r.Err() == nil {
				v.SetInt(i)
			}
		}
		p.min = bits / 8
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		bits := t.Bits()
		p.write = func(w *Writer, v reflect.Value) { w.WriteFixed(bits, v.Uint()) }
		p.read = func(r *Reader, v reflect.Value) {
			var u uint64
			if r.ReadFixed(bits, &u); r.Err() == nil {
				v.SetUint(u)
			}
		}
		p.min = bits / 8
	case reflect.String:
		p.write = func(w *Writer, v reflect.Value) { String.Write(w, v.String()) }
		p.read = func(r *Reader, v reflect.Value) {
			var s string
			if String.Read(r, &s); r.Err() == nil {
				v.SetString(s)
			}
		}
		p.min = 1
	case reflect.Slice:
		if err := p.slice(t, visiting); err != nil {
			return nil, err
		}
	case reflect.Array:
		if err := p.array(t, visiting); err != nil {
			return nil, err
		}
	case reflect.Pointer:
		if err := p.option(t, visiting); err != nil {
			return nil, err
		}
	case reflect.Struct:
		if err := p.structFields(t, visiting); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, t)
	}
	return p, nil
}

func (p *plan) compactBig() {
	p.write = func(w *Writer, v reflect.Value) {
		CompactBig.Write(w, v.Interface().(*big.Int))
	}
	p.read = func(r *Reader, v reflect.Value) {
		var b *big.Int
		if CompactBig.Read(r, &b); r.Err() == nil {
			v.Set(reflect.ValueOf(b))
		}
	}
	p.min = 1
}

func (p *plan) selfCoded(t reflect.Type) {
	p.write = func(w *Writer, v reflect.Value) {
		if !v.CanAddr() {
			c := reflect.New(t)
			c.Elem().Set(v)
			v = c.Elem()
		}
		v.Addr().Interface().(Encoder).EncodeScale(w)
	}
	p.read = func(r *Reader, v reflect.Value) {
		v.Addr().Interface().(Decoder).DecodeScale(r)
	}
}

func (p *plan) slice(t reflect.Type, visiting map[reflect.Type]*plan) error {
	p.min = 1
	if t.Elem().Kind() == reflect.Uint8 && !reflect.PointerTo(t.Elem()).Implements(encoderType) {
		p.write = func(w *Writer, v reflect.Value) { Bytes.Write(w, v.Bytes()) }
		p.read = func(r *Reader, v reflect.Value) {
			var b []byte
			if Bytes.Read(r, &b); r.Err() == nil {
				v.SetBytes(b)
			}
		}
		return nil
	}
	elem, err := buildPlan(t.Elem(), visiting)
	if err != nil {
		return err
	}
	p.write = func(w *Writer, v reflect.Value) {
		n := v.Len()
		w.WriteCompact(uint64(n))
		for i := 0; i < n && w.Err() == nil; i++ {
			elem.write(w, v.Index(i))
		}
	}
	p.read = func(r *Reader, v reflect.Value) {
		n := r.ReadLength(elem.min)
		if r.Err() != nil {
			return
		}
		s := reflect.MakeSlice(t, 0, r.capHint(n, elem.min))
		zero := reflect.Zero(t.Elem())
		for i := 0; i < n; i++ {
			s = reflect.Append(s, zero)
			elem.read(r, s.Index(i))
			if r.Err() != nil {
				return
			}
		}
		v.Set(s)
	}
	return nil
}

func (p *plan) array(t reflect.Type, visiting map[reflect.Type]*plan) error {
	elem, err := buildPlan(t.Elem(), visiting)
	if err != nil {
		return err
	}
	n := t.Len()
	p.min = n * elem.min
	p.write = func(w *Writer, v reflect.Value) {
		for i := 0; i < n && w.Err() == nil; i++ {
			elem.write(w, v.Index(i))
		}
	}
	p.read = func(r *Reader, v reflect.Value) {
		for i := 0; i < n && r.Err() == nil; i++ {
			elem.read(r, v.Index(i))
		}
	}
	return nil
}

func (p *plan) option(t reflect.Type, visiting map[reflect.Type]*plan) error {
	p.min = 1
	if t.Elem().Kind() == reflect.Bool {
		p.write = func(w *Writer, v reflect.Value) {
			o := Optional[bool]{Valid: !v.IsNil()}
			if o.Valid {
				o.Value = v.Elem().Bool()
			}
			OptionBool.Write(w, o)
		}
		p.read = func(r *Reader, v reflect.Value) {
			var o Optional[bool]
			if OptionBool.Read(r, &o); r.Err() != nil {
				return
			}
			if !o.Valid {
				v.Set(reflect.Zero(t))
				return
			}
			b := reflect.New(t.Elem())
			b.Elem().SetBool(o.Value)
			v.Set(b)
		}
		return nil
	}
	elem, err := buildPlan(t.Elem(), visiting)
	if err != nil {
		return err
	}
	p.write = func(w *Writer, v reflect.Value) {
		if v.IsNil() {
			_ = w.WriteByte(0)
			return
		}
		_ = w.WriteByte(1)
		elem.write(w, v.Elem())
	}
	p.read = func(r *Reader, v reflect.Value) {
		tag, err := r.ReadByte()
		if err != nil {
			return
		}
		switch tag {
		case 0:
			v.Set(reflect.Zero(t))
		case 1:
			e := reflect.New(t.Elem())
			if elem.read(r, e.Elem()); r.Err() == nil {
				v.Set(e)
			}
		default:
			r.Fail(fmt.Errorf("%w: option tag %d at offset %d", ErrInvalidDiscriminant, tag, r.Pos()-1))
		}
	}
	return nil
}

type fieldPlan struct {
	index int
	*plan
}

func (p *plan) structFields(t reflect.Type, visiting map[reflect.Type]*plan) error {
	var fields []fieldPlan
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := strings.TrimSpace(sf.Tag.Get("scale"))
		if tag == "-" {
			continue
		}
		var fp *plan
		var err error
		switch tag {
		case "compact":
			fp, err = compactPlan(sf.Type)
		case "":
			fp, err = buildPlan(sf.Type, visiting)
		default:
			err = fmt.Errorf("%w: unknown scale tag %q on %v.%s", ErrUnsupportedType, tag, t, sf.Name)
		}
		if err != nil {
			return err
		}
		fields = append(fields, fieldPlan{index: i, plan: fp})
		p.min += fp.min
	}
	p.write = func(w *Writer, v reflect.Value) {
		for _, f := range fields {
			if w.Err() != nil {
				return
			}
			f.write(w, v.Field(f.index))
		}
	}
	p.read = func(r *Reader, v reflect.Value) {
		for _, f := range fields {
			if r.Err() != nil {
				return
			}
			f.read(r, v.Field(f.index))
		}
	}
	return nil
}

// compactPlan builds the plan of a field tagged `scale:"compact"`.
func compactPlan(t reflect.Type) (*plan, error) {
	p := &plan{min: 1}
	switch {
	case t == bigIntPtrType:
		p.compactBig()
	case t == uint128Type:
		p.write = func(w *Writer, v reflect.Value) { CompactU128.Write(w, v.Interface().(Uint128)) }
		p.read = func(r *Reader, v reflect.Value) {
			var u Uint128
			if CompactU128.Read(r, &u); r.Err() == nil {
				v.Set(reflect.ValueOf(u))
			}
		}
	case t.Kind() >= reflect.Uint8 && t.Kind() <= reflect.Uint64:
		p.write = func(w *Writer, v reflect.Value) { w.WriteCompact(v.Uint()) }
		p.read = func(r *Reader, v reflect.Value) {
			var u uint64
			if r.ReadCompact(&u); r.Err() != nil {
				return
			}
			if v.OverflowUint(u) {
				r.Fail(fmt.Errorf("%w: compact %d does not fit in %v", ErrOverflow, u, t))
				return
			}
			v.SetUint(u)
		}
	default:
		return nil, fmt.Errorf("%w: compact tag on %v", ErrUnsupportedType, t)
	}
	return p, nil
}

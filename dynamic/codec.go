package dynamic

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/oy3o/scale"
)

// HexBytes is decoded binary data. It renders as a 0x-prefixed hex string in
// text formats and stays a byte string in binary ones.
type HexBytes []byte

func (b HexBytes) String() string { return "0x" + hex.EncodeToString(b) }

func (b HexBytes) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *HexBytes) UnmarshalText(text []byte) error {
	out, err := parseHex(string(text))
	if err != nil {
		return err
	}
	*b = out
	return nil
}

func parseHex(s string) ([]byte, error) {
	s, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return nil, fmt.Errorf("%w: hex string %q without 0x prefix", scale.ErrTypeMismatch, s)
	}
	return hex.DecodeString(s)
}

// Compile parses expr and returns the codec of the resulting type.
func Compile(expr string) (scale.Codec[any], error) {
	t, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return t.Codec()
}

// Codec returns a codec for values of t, in the shapes listed in the package
// documentation.
func (t *Type) Codec() (scale.Codec[any], error) {
	switch t.Kind {
	case KindUint, KindInt:
		switch t.Bits {
		case 8, 16, 32, 64, 128:
		default:
			return nil, fmt.Errorf("%w: %d-bit integer", scale.ErrUnsupportedType, t.Bits)
		}
		if t.Kind == KindUint {
			return uintCodec(t), nil
		}
		return intCodec(t), nil
	case KindBool:
		return adapt(scale.Bool, func(v any) (bool, error) { return toBool(t, v) }, box[bool]), nil
	case KindString:
		return adapt(scale.String, func(v any) (string, error) { return toString(t, v) }, box[string]), nil
	case KindBytes:
		return adapt(scale.Bytes, func(v any) ([]byte, error) { return toBytes(t, v) }, hexBytes), nil
	case KindCompact:
		if t.Elem == nil || t.Elem.Kind != KindUint {
			return nil, fmt.Errorf("%w: compact of non-unsigned type", scale.ErrUnsupportedType)
		}
		return compactCodec(t), nil
	case KindVec, KindArray:
		if t.Elem == nil {
			return nil, fmt.Errorf("%w: %v without element type", scale.ErrUnsupportedType, t.Kind)
		}
		if t.Kind == KindArray && (t.Len < 0 || t.Len > maxArrayLen) {
			return nil, fmt.Errorf("%w: array length %d", scale.ErrUnsupportedType, t.Len)
		}
		if t.Kind == KindArray && t.Elem.Kind == KindUint && t.Elem.Bits == 8 {
			return adapt(scale.Raw(t.Len), func(v any) ([]byte, error) { return toBytes(t, v) }, hexBytes), nil
		}
		ec, err := t.Elem.Codec()
		if err != nil {
			return nil, err
		}
		seq := scale.Sequence(ec)
		if t.Kind == KindArray {
			seq = scale.FixedArray(ec, t.Len)
		}
		return adapt(seq, func(v any) ([]any, error) { return toList(t, v) }, box[[]any]), nil
	case KindTuple:
		return tupleCodec(t)
	case KindOption:
		return optionCodec(t)
	case KindResult:
		return resultCodec(t)
	case KindEnum:
		return enumCodec(t)
	}
	return nil, fmt.Errorf("%w: kind %d", scale.ErrUnsupportedType, t.Kind)
}

// adapt exposes a typed codec as a Codec[any], converting on the way in and out.
func adapt[V any](c scale.Codec[V], in func(any) (V, error), out func(V) any) scale.Codec[any] {
	return scale.FuncMin(minOf(c),
		func(w *scale.Writer, v any) {
			x, err := in(v)
			if err != nil {
				w.Fail(err)
				return
			}
			c.Write(w, x)
		},
		func(r *scale.Reader, dest *any) {
			var x V
			c.Read(r, &x)
			if r.Err() == nil {
				*dest = out(x)
			}
		})
}

func box[V any](v V) any { return v }

func hexBytes(b []byte) any { return HexBytes(b) }

func minOf(c any) int {
	if m, ok := c.(scale.MinSizer); ok {
		return m.MinSize()
	}
	return 0
}

func mismatch(t *Type, v any) error {
	return fmt.Errorf("%w: %T for %s", scale.ErrTypeMismatch, v, t)
}

func uintCodec(t *Type) scale.Codec[any] {
	bits := t.Bits
	if bits == 128 {
		return adapt(scale.U128,
			func(v any) (scale.Uint128, error) {
				b, err := toBig(t, v)
				if err != nil {
					return scale.Uint128{}, err
				}
				return scale.Uint128FromBig(b)
			},
			func(u scale.Uint128) any { return u.Big() })
	}
	return scale.FuncMin(bits/8,
		func(w *scale.Writer, v any) {
			b, err := toBig(t, v)
			if err != nil {
				w.Fail(err)
				return
			}
			if b.Sign() < 0 || b.BitLen() > bits {
				w.Fail(fmt.Errorf("%w: %s does not fit in %s", scale.ErrOverflow, b, t))
				return
			}
			w.WriteFixed(bits, b.Uint64())
		},
		func(r *scale.Reader, dest *any) {
			var u uint64
			r.ReadFixed(bits, &u)
			if r.Err() == nil {
				*dest = u
			}
		})
}

func intCodec(t *Type) scale.Codec[any] {
	bits := t.Bits
	if bits == 128 {
		return adapt(scale.I128,
			func(v any) (scale.Int128, error) {
				b, err := toBig(t, v)
				if err != nil {
					return scale.Int128{}, err
				}
				return scale.Int128FromBig(b)
			},
			func(i scale.Int128) any { return i.Big() })
	}
	return scale.FuncMin(bits/8,
		func(w *scale.Writer, v any) {
			b, err := toBig(t, v)
			if err != nil {
				w.Fail(err)
				return
			}
			if !b.IsInt64() {
				w.Fail(fmt.Errorf("%w: %s does not fit in %s", scale.ErrOverflow, b, t))
				return
			}
			w.WriteFixedSigned(bits, b.Int64())
		},
		func(r *scale.Reader, dest *any) {
			var i int64
			r.ReadFixedSigned(bits, &i)
			if r.Err() == nil {
				*dest = i
			}
		})
}

func compactCodec(t *Type) scale.Codec[any] {
	bits := t.Elem.Bits
	return scale.FuncMin(1,
		func(w *scale.Writer, v any) {
			b, err := toBig(t, v)
			if err != nil {
				w.Fail(err)
				return
			}
			if b.Sign() < 0 || b.BitLen() > bits {
				w.Fail(fmt.Errorf("%w: %s does not fit in %s", scale.ErrOverflow, b, t))
				return
			}
			w.WriteCompactBig(b)
		},
		func(r *scale.Reader, dest *any) {
			b := new(big.Int)
			r.ReadCompactBig(b)
			if r.Err() != nil {
				return
			}
			if b.BitLen() > bits {
				r.Fail(fmt.Errorf("%w: compact %s does not fit in %s", scale.ErrOverflow, b, t.Elem))
				return
			}
			if bits <= 64 {
				*dest = b.Uint64()
			} else {
				*dest = b
			}
		})
}

func tupleCodec(t *Type) (scale.Codec[any], error) {
	fields := make([]scale.Codec[any], len(t.Fields))
	size := 0
	for i, f := range t.Fields {
		c, err := f.Codec()
		if err != nil {
			return nil, err
		}
		fields[i] = c
		size += minOf(c)
	}
	return scale.FuncMin(size,
		func(w *scale.Writer, v any) {
			xs, err := toList(t, v)
			if err != nil {
				w.Fail(err)
				return
			}
			if len(xs) != len(fields) {
				w.Fail(fmt.Errorf("%w: %d values for %s", scale.ErrTypeMismatch, len(xs), t))
				return
			}
			for i, c := range fields {
				c.Write(w, xs[i])
			}
		},
		func(r *scale.Reader, dest *any) {
			out := make([]any, len(fields))
			for i, c := range fields {
				c.Read(r, &out[i])
				if r.Err() != nil {
					return
				}
			}
			*dest = out
		}), nil
}

func optionCodec(t *Type) (scale.Codec[any], error) {
	if t.Elem == nil {
		return nil, fmt.Errorf("%w: option without element type", scale.ErrUnsupportedType)
	}
	// null is the only absent value, so Some(None) would not survive a round trip.
	if t.Elem.Kind == KindOption {
		return nil, fmt.Errorf("%w: nested option %s", scale.ErrUnsupportedType, t)
	}
	if t.Elem.Kind == KindBool {
		return adapt(scale.OptionBool,
			func(v any) (scale.Optional[bool], error) {
				if v == nil {
					return scale.None[bool](), nil
				}
				b, err := toBool(t, v)
				return scale.Some(b), err
			},
			unwrap[bool]), nil
	}
	ec, err := t.Elem.Codec()
	if err != nil {
		return nil, err
	}
	return adapt(scale.Option(ec),
		func(v any) (scale.Optional[any], error) {
			if v == nil {
				return scale.None[any](), nil
			}
			return scale.Some(v), nil
		},
		unwrap[any]), nil
}

func unwrap[V any](o scale.Optional[V]) any {
	if !o.Valid {
		return nil
	}
	return o.Value
}

func resultCodec(t *Type) (scale.Codec[any], error) {
	okc, err := t.Elem.Codec()
	if err != nil {
		return nil, err
	}
	errc, err := t.Err.Codec()
	if err != nil {
		return nil, err
	}
	return adapt(scale.Result(okc, errc),
		func(v any) (scale.Outcome[any, any], error) {
			name, payload, err := singleKey(t, v)
			switch {
			case err != nil:
				return scale.Outcome[any, any]{}, err
			case name == "Ok":
				return scale.Ok[any, any](payload), nil
			case name == "Err":
				return scale.Failed[any](payload), nil
			}
			return scale.Outcome[any, any]{}, fmt.Errorf("%w: result key %q, want Ok or Err", scale.ErrTypeMismatch, name)
		},
		func(o scale.Outcome[any, any]) any {
			if o.IsErr {
				return map[string]any{"Err": o.Err}
			}
			return map[string]any{"Ok": o.Ok}
		}), nil
}

func enumCodec(t *Type) (scale.Codec[any], error) {
	mapping := make([]scale.Codec[any], len(t.Variants))
	index := make(map[string]uint8, len(t.Variants))
	for i, m := range t.Variants {
		index[m.Name] = uint8(i)
		if m.Type == nil {
			continue
		}
		c, err := m.Type.Codec()
		if err != nil {
			return nil, err
		}
		mapping[i] = c
	}
	u, err := scale.NewUnion(mapping...)
	if err != nil {
		return nil, err
	}
	return adapt[scale.Variant[any]](u,
		func(v any) (scale.Variant[any], error) {
			name, payload, err := variantOf(t, v)
			if err != nil {
				return scale.Variant[any]{}, err
			}
			idx, ok := index[name]
			if !ok {
				return scale.Variant[any]{}, fmt.Errorf("%w: no variant %q in %s", scale.ErrInvalidDiscriminant, name, t)
			}
			return scale.Variant[any]{Index: idx, Value: payload}, nil
		},
		func(v scale.Variant[any]) any {
			m := t.Variants[v.Index]
			if m.Type == nil {
				return m.Name
			}
			return map[string]any{m.Name: v.Value}
		}), nil
}

func variantOf(t *Type, v any) (string, any, error) {
	if s, ok := v.(string); ok {
		return s, nil, nil
	}
	return singleKey(t, v)
}

func singleKey(t *Type, v any) (string, any, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, mismatch(t, v)
	}
	for k, x := range m {
		return k, x, nil
	}
	return "", nil, mismatch(t, v)
}

func toBig(t *Type, v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		if x != nil {
			return x, nil
		}
	case int:
		return big.NewInt(int64(x)), nil
	case int8:
		return big.NewInt(int64(x)), nil
	case int16:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			b, _ := big.NewFloat(x).Int(nil)
			return b, nil
		}
	case json.Number:
		return parseInt(t, x.String())
	case string:
		return parseInt(t, x)
	case scale.Uint128:
		return x.Big(), nil
	case scale.Int128:
		return x.Big(), nil
	}
	return nil, mismatch(t, v)
}

func parseInt(t *Type, s string) (*big.Int, error) {
	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer for %s", scale.ErrTypeMismatch, s, t)
	}
	return b, nil
}

func toBool(t *Type, v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, mismatch(t, v)
}

func toString(t *Type, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", mismatch(t, v)
}

func toBytes(t *Type, v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case HexBytes:
		return x, nil
	case string:
		return parseHex(x)
	case []any:
		out := make([]byte, len(x))
		for i, e := range x {
			b, err := toBig(t, e)
			if err != nil {
				return nil, err
			}
			if b.Sign() < 0 || b.BitLen() > 8 {
				return nil, fmt.Errorf("%w: byte %s at index %d", scale.ErrOverflow, b, i)
			}
			out[i] = byte(b.Uint64())
		}
		return out, nil
	}
	return nil, mismatch(t, v)
}

// toList accepts []any and any other slice or array, element by element.
func toList(t *Type, v any) ([]any, error) {
	if xs, ok := v.([]any); ok {
		return xs, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, mismatch(t, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

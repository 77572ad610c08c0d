// Package dynamic builds codecs at run time from type expressions such as
// "Vec<(u32, Option<Bytes>)>", for payloads whose schema is only known from
// chain metadata or from the command line.
//
// Decoded values use a small set of Go shapes so they serialize directly to
// JSON or CBOR:
//
//	u8..u64, Compact<u8..u64>   uint64
//	i8..i64                     int64
//	u128, i128, Compact<u128>   *big.Int
//	bool                        bool
//	str                         string
//	Bytes, Vec<u8>, [u8; N]     HexBytes
//	Vec<T>, [T; N], (A, B, ..)  []any
//	Option<T>                   nil or the value; T may not be an Option
//	Result<T, E>                map[string]any{"Ok": v} or {"Err": e}
//	Enum{A, B: T}               "A" or map[string]any{"B": v}
//
// Encoding accepts those shapes plus the loose ones encoding/json produces
// (float64, json.Number, decimal or 0x-prefixed strings).
package dynamic

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a Type.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindBool
	KindString
	KindBytes
	KindCompact
	KindVec
	KindArray
	KindTuple
	KindOption
	KindResult
	KindEnum
)

// Type is a parsed type expression.
type Type struct {
	Kind     Kind
	Bits     int      // KindUint, KindInt
	Elem     *Type    // KindCompact, KindVec, KindArray, KindOption; Ok side of KindResult
	Err      *Type    // Err side of KindResult
	Len      int      // KindArray
	Fields   []*Type  // KindTuple
	Variants []Member // KindEnum, in discriminant order
}

// Member is one variant of an enumeration. Type is nil for variants without payload.
type Member struct {
	Name string
	Type *Type
}

// String renders t in the canonical expression syntax accepted by Parse.
func (t *Type) String() string {
	switch t.Kind {
	case KindUint:
		return fmt.Sprintf("u%d", t.Bits)
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindBytes:
		return "Bytes"
	case KindCompact:
		return "Compact<" + t.Elem.String() + ">"
	case KindVec:
		return "Vec<" + t.Elem.String() + ">"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	case KindTuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindOption:
		return "Option<" + t.Elem.String() + ">"
	case KindResult:
		return "Result<" + t.Elem.String() + ", " + t.Err.String() + ">"
	case KindEnum:
		parts := make([]string, len(t.Variants))
		for i, m := range t.Variants {
			if m.Type == nil {
				parts[i] = m.Name
			} else {
				parts[i] = m.Name + ": " + m.Type.String()
			}
		}
		return "Enum{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("Kind(%d)", t.Kind)
}

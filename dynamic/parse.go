package dynamic

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrSyntax is returned for malformed type expressions.
var ErrSyntax = errors.New("dynamic: invalid type expression")

const (
	// maxDepth bounds nesting so hostile expressions cannot exhaust the stack.
	maxDepth = 64
	// maxArrayLen bounds [T; N]; larger fixed arrays do not occur in chain types.
	maxArrayLen = 1 << 20
)

// Parse parses a type expression. The grammar is
//
//	type   = prim | "Compact<" type ">" | "Vec<" type ">" | "Option<" type ">"
//	       | "Result<" type "," type ">" | "[" type ";" N "]"
//	       | "(" [type {"," type}] ")" | "Enum{" member {"," member} "}"
//	member = name [":" type]
//	prim   = u8 | u16 | u32 | u64 | u128 | i8 | ... | i128 | bool | str | String | Bytes
func Parse(expr string) (*Type, error) {
	p := &parser{src: []rune(expr)}
	t, err := p.parseType(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q after type", string(p.src[p.pos:]))
	}
	return t, nil
}

// MustParse is Parse that panics on error, for expressions fixed at compile time.
func MustParse(expr string) *Type {
	t, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() rune {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c rune) error {
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.src[p.pos])
	}
	p.pos++
	return nil
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] == '_' || unicode.IsLetter(p.src[p.pos]) || (p.pos > start && unicode.IsDigit(p.src[p.pos]))) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) number() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}
	n, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, p.errorf("expected array length")
	}
	if n > maxArrayLen {
		return 0, p.errorf("array length %d exceeds %d", n, maxArrayLen)
	}
	return n, nil
}

func (p *parser) parseType(depth int) (*Type, error) {
	if depth > maxDepth {
		return nil, p.errorf("nesting deeper than %d", maxDepth)
	}
	switch p.peek() {
	case '[':
		p.pos++
		elem, err := p.parseType(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(';'); err != nil {
			return nil, err
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindArray, Elem: elem, Len: n}, nil
	case '(':
		p.pos++
		t := &Type{Kind: KindTuple}
		for p.peek() != ')' {
			f, err := p.parseType(depth + 1)
			if err != nil {
				return nil, err
			}
			t.Fields = append(t.Fields, f)
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return t, nil
	}

	name := p.ident()
	switch name {
	case "":
		if p.pos >= len(p.src) {
			return nil, p.errorf("expected type, got end of input")
		}
		return nil, p.errorf("expected type, got %q", p.src[p.pos])
	case "bool":
		return &Type{Kind: KindBool}, nil
	case "str", "String", "Text":
		return &Type{Kind: KindString}, nil
	case "Bytes":
		return &Type{Kind: KindBytes}, nil
	case "u8", "u16", "u32", "u64", "u128":
		bits, _ := strconv.Atoi(name[1:])
		return &Type{Kind: KindUint, Bits: bits}, nil
	case "i8", "i16", "i32", "i64", "i128":
		bits, _ := strconv.Atoi(name[1:])
		return &Type{Kind: KindInt, Bits: bits}, nil
	case "Compact", "Vec", "Option":
		elem, err := p.generic1(depth)
		if err != nil {
			return nil, err
		}
		switch {
		case name == "Compact" && elem.Kind != KindUint:
			return nil, p.errorf("Compact needs an unsigned integer, got %s", elem)
		case name == "Compact":
			return &Type{Kind: KindCompact, Elem: elem}, nil
		case name == "Vec" && elem.Kind == KindUint && elem.Bits == 8:
			return &Type{Kind: KindBytes}, nil
		case name == "Vec":
			return &Type{Kind: KindVec, Elem: elem}, nil
		}
		return &Type{Kind: KindOption, Elem: elem}, nil
	case "Result":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		ok, err := p.parseType(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		e, err := p.parseType(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return &Type{Kind: KindResult, Elem: ok, Err: e}, nil
	case "Enum":
		return p.enum(depth)
	}
	return nil, p.errorf("unknown type %q", name)
}

func (p *parser) generic1(depth int) (*Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	elem, err := p.parseType(depth + 1)
	if err != nil {
		return nil, err
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return elem, nil
}

func (p *parser) enum(depth int) (*Type, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	t := &Type{Kind: KindEnum}
	seen := make(map[string]bool)
	for p.peek() != '}' {
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected variant name")
		}
		if seen[name] {
			return nil, p.errorf("duplicate variant %q", name)
		}
		seen[name] = true
		m := Member{Name: name}
		if p.peek() == ':' {
			p.pos++
			mt, err := p.parseType(depth + 1)
			if err != nil {
				return nil, err
			}
			m.Type = mt
		}
		t.Variants = append(t.Variants, m)
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	if len(t.Variants) == 0 {
		return nil, p.errorf("enum without variants")
	}
	if len(t.Variants) > 256 {
		return nil, p.errorf("enum with %d variants, at most 256", len(t.Variants))
	}
	return t, nil
}

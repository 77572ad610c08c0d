package scale

import (
	"errors"
	"io"
)

var (
	// ErrNilIO indicates that NewWriter was called with a nil io.Writer.
	ErrNilIO = errors.New("scale: NewWriter called with a nil io.Writer")

	// ErrEndOfInput indicates that a read needed more bytes than remain in the input.
	// It matches io.ErrUnexpectedEOF under errors.Is.
	ErrEndOfInput error = &endOfInput{}

	// ErrInvalidBool indicates a boolean read encountered a byte other than 0 or 1.
	ErrInvalidBool = errors.New("scale: invalid boolean byte")

	// ErrInvalidDiscriminant indicates a union discriminant with no entry in the variant mapping.
	ErrInvalidDiscriminant = errors.New("scale: invalid discriminant")

	// ErrOversizedLength indicates a declared sequence length that cannot fit in the remaining input.
	ErrOversizedLength = errors.New("scale: declared length exceeds remaining input")

	// ErrOverflow indicates a value that is not representable in the target width.
	ErrOverflow = errors.New("scale: value overflows encoding width")

	// ErrNonCanonical indicates a compact integer that is not minimally encoded.
	// Only reported by readers running the strict profile.
	ErrNonCanonical = errors.New("scale: non-canonical compact encoding")

	// ErrTrailingData indicates input left over after a complete decode.
	ErrTrailingData = errors.New("scale: trailing data after decoding")

	// ErrTypeMismatch indicates a value whose dynamic type does not match the codec.
	ErrTypeMismatch = errors.New("scale: value type does not match codec")

	// ErrInvalidUnion indicates a variant mapping rejected at construction time.
	ErrInvalidUnion = errors.New("scale: invalid variant mapping")

	// ErrUnsupportedType indicates a Go type the reflection codec cannot encode.
	ErrUnsupportedType = errors.New("scale: unsupported type")
)

type endOfInput struct{}

func (*endOfInput) Error() string { return "scale: unexpected end of input" }

func (*endOfInput) Is(target error) bool { return target == io.ErrUnexpectedEOF }

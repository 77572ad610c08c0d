package scale

// Profile controls how permissive a Reader is with well-formed but unusual input.
type Profile struct {
	// StrictCompact rejects compact integers that are not minimally encoded.
	// Writers always emit the minimal form; readers accept any form by default.
	StrictCompact bool

	// LengthSlack is how far a declared sequence length may exceed the number
	// of elements the remaining input could hold before it is rejected as
	// oversized instead of running into end-of-input.
	LengthSlack int

	// AllowTrailing lets Decode and Unmarshal succeed with unread input left over.
	AllowTrailing bool
}

// DefaultProfile is lenient on compact minimality and allows 64Ki elements of slack.
var DefaultProfile = Profile{LengthSlack: 1 << 16}

// ReaderOption adjusts the Profile of a new Reader.
type ReaderOption func(*Profile)

func WithStrictCompact() ReaderOption {
	return func(p *Profile) { p.StrictCompact = true }
}

func WithLengthSlack(n int) ReaderOption {
	return func(p *Profile) {
		if n >= 0 {
			p.LengthSlack = n
		}
	}
}

func WithTrailingData() ReaderOption {
	return func(p *Profile) { p.AllowTrailing = true }
}

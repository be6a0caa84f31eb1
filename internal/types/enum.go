package types

import "ccabi/internal/source"

// IntValue is the integer value of an enumerator. It is implemented by
// targetint.TargetInt.
type IntValue interface {
	IsNegative() bool
	// MinRequiredWidth is the number of bits needed for the value,
	// including the sign bit for negative values.
	MinRequiredWidth() int
	// ConvertTo converts the value to the given precision and signedness,
	// failing if the value is not representable.
	ConvertTo(prec int, signed bool) (IntValue, error)
	String() string
}

// EnumMember is one enumerator. Type is set by the enum evaluation.
type EnumMember struct {
	Name  string
	Value IntValue
	Type  Int
	Span  source.Span
}

// EnumContent holds the enumerators of an enum and its underlying type once
// evaluated.
type EnumContent struct {
	Members []*EnumMember

	evaluated  bool
	underlying Int
}

// SetUnderlying stores the evaluated underlying type.
func (c *EnumContent) SetUnderlying(t Int) {
	c.evaluated = true
	c.underlying = t
}

// IsEvaluated reports whether the underlying type is known.
func (c *EnumContent) IsEvaluated() bool { return c.evaluated }

// Underlying returns the underlying integer type.
func (c *EnumContent) Underlying() Int { return c.underlying }

// Lookup finds an enumerator by name.
func (c *EnumContent) Lookup(name string) (*EnumMember, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

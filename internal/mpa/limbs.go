package mpa

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDivByZero indicates an attempt to divide by zero.
	ErrDivByZero = errors.New("division by zero")
	// ErrOverflow indicates a value does not fit the requested native type.
	ErrOverflow = errors.New("value does not fit")
)

// Limbs is an unsigned integer of width Len()*LimbWidth, least significant
// limb first.
type Limbs struct {
	limbs []Limb
}

// New returns a Limbs holding a copy of ls.
func New(ls ...Limb) Limbs {
	return Limbs{limbs: slices.Clone(ls)}
}

// Zero returns n zero limbs.
func Zero(n int) Limbs {
	if n < 0 {
		panic(fmt.Errorf("mpa: negative limb count %d", n))
	}
	return Limbs{limbs: make([]Limb, n)}
}

// FromUint64 returns v as Limbs. Zero is represented by a single zero limb.
func FromUint64(v uint64) Limbs {
	return Limbs{limbs: []Limb{Limb(v)}}
}

// WidthToSize returns the number of limbs needed to hold width bits.
func WidthToSize(width int) int {
	return (width + LimbWidth - 1) / LimbWidth
}

// Len returns the number of limbs.
func (a Limbs) Len() int {
	return len(a.limbs)
}

// Width returns the number of bits, Len()*LimbWidth.
func (a Limbs) Width() int {
	return len(a.limbs) * LimbWidth
}

// Limb returns the i-th limb, counting from the least significant one.
func (a Limbs) Limb(i int) Limb {
	return a.limbs[i]
}

// Slice returns a copy of the limbs.
func (a Limbs) Slice() []Limb {
	return slices.Clone(a.limbs)
}

func (a Limbs) at(i int) Limb {
	if i < len(a.limbs) {
		return a.limbs[i]
	}
	return 0
}

// Resize returns a truncated or zero extended copy with n limbs.
func (a Limbs) Resize(n int) Limbs {
	if n < 0 {
		panic(fmt.Errorf("mpa: negative limb count %d", n))
	}
	out := make([]Limb, n)
	copy(out, a.limbs)
	return Limbs{limbs: out}
}

// Trim returns a copy without the most significant zero limbs, keeping at
// least one limb.
func (a Limbs) Trim() Limbs {
	n := len(a.limbs)
	for n > 1 && a.limbs[n-1] == 0 {
		n--
	}
	if n == 0 {
		return Zero(1)
	}
	return Limbs{limbs: slices.Clone(a.limbs[:n])}
}

// IsZero reports whether no bit is set.
func (a Limbs) IsZero() bool {
	for _, l := range a.limbs {
		if l != 0 {
			return false
		}
	}
	return true
}

// Cmp compares the values of a and b, ignoring the number of limbs.
func (a Limbs) Cmp(b Limbs) int {
	for i := max(len(a.limbs), len(b.limbs)) - 1; i >= 0; i-- {
		x, y := a.at(i), b.at(i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// Equal reports whether a and b hold the same value.
func (a Limbs) Equal(b Limbs) bool { return a.Cmp(b) == 0 }

// Less reports whether a < b.
func (a Limbs) Less(b Limbs) bool { return a.Cmp(b) < 0 }

// LessEq reports whether a <= b.
func (a Limbs) LessEq(b Limbs) bool { return a.Cmp(b) <= 0 }

// FitsInto reports whether the value can be represented in width bits.
func (a Limbs) FitsInto(width int) bool {
	return !a.IsAnySetAtOrAbove(width)
}

// Uint64 returns the value as uint64 or ErrOverflow.
func (a Limbs) Uint64() (uint64, error) {
	if !a.FitsInto(64) {
		return 0, fmt.Errorf("%w in 64 bits: %s", ErrOverflow, a)
	}
	return uint64(a.at(0)), nil
}

// MustUint64 is like Uint64 but panics if the value does not fit.
func (a Limbs) MustUint64() uint64 {
	v, err := a.Uint64()
	if err != nil {
		panic(err)
	}
	return v
}

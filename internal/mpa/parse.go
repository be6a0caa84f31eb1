package mpa

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

var (
	// ErrParse is the common cause of all string conversion errors.
	ErrParse = errors.New("invalid numeric format")
	// ErrUnrecognizedDigit reports a character that is not a digit in any base.
	ErrUnrecognizedDigit = fmt.Errorf("%w: unrecognized digit", ErrParse)
	// ErrDigitInvalidForBase reports a digit that is too large for the base.
	ErrDigitInvalidForBase = fmt.Errorf("%w: digit invalid for base", ErrParse)
	// ErrInvalidBase reports a base outside of 2..36.
	ErrInvalidBase = fmt.Errorf("%w: base out of range", ErrParse)
)

// MinBase and MaxBase bound the bases accepted by FromString and ToString.
const (
	MinBase = 2
	MaxBase = 36
)

// checkBase validates base and returns it as a digit multiplier.
func checkBase(base int) (uint64, error) {
	if base < MinBase || base > MaxBase {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBase, base)
	}
	return safecast.Conv[uint64](base)
}

func digitValue(ch byte) (Limb, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return Limb(ch - '0'), true
	case ch >= 'a' && ch <= 'z':
		return Limb(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'Z':
		return Limb(ch-'A') + 10, true
	default:
		return 0, false
	}
}

// FromString parses the digits in s as an unsigned number in the given base.
// Letters stand for the digits 10 to 35 in either case. No sign, prefix or
// separator is accepted. The empty string yields zero.
func FromString(s string, base int) (Limbs, error) {
	ub, err := checkBase(base)
	if err != nil {
		return Limbs{}, err
	}
	b := Limb(ub)
	r := []Limb{0}
	for i := 0; i < len(s); i++ {
		var carry Limb
		for j := range r {
			t, _ := b.Mul(r[j]).Add(carry)
			r[j] = t.Low
			carry = t.High
		}
		if carry != 0 {
			r = append(r, carry)
		}

		d, ok := digitValue(s[i])
		if !ok {
			return Limbs{}, fmt.Errorf("%w %q at offset %d", ErrUnrecognizedDigit, s[i], i)
		}
		if d >= b {
			return Limbs{}, fmt.Errorf("%w %d: %q at offset %d", ErrDigitInvalidForBase, base, s[i], i)
		}

		overflow := false
		r[0], overflow = r[0].Add(d)
		for j := 1; j < len(r) && overflow; j++ {
			r[j], overflow = r[j].AddCarry(overflow)
		}
		if overflow {
			r = append(r, 1)
		}
	}
	return Limbs{limbs: r}, nil
}

// MustFromString is like FromString but panics on error. It is meant for
// constants in tests and tables.
func MustFromString(s string, base int) Limbs {
	v, err := FromString(s, base)
	if err != nil {
		panic(err)
	}
	return v
}

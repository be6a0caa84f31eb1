// Package targetint implements fixed precision target integers on top of
// mpa.Limbs.
//
// A TargetInt has a precision (the number of value bits) and a signedness.
// Its width is the precision plus one sign bit for signed values. The limbs
// are kept in canonical form: an unsigned value has all bits at and above its
// precision cleared, a signed value has them all equal to the sign bit.
package targetint

import (
	"errors"
	"fmt"

	"ccabi/internal/mpa"
	"ccabi/internal/types"
)

var (
	// ErrOverflow reports a result that is not representable at the
	// operands' precision.
	ErrOverflow = errors.New("integer overflow")
	// ErrDivByZero reports a division or modulo by zero.
	ErrDivByZero = mpa.ErrDivByZero
)

// TargetInt is an integer of a target integer type.
type TargetInt struct {
	prec   int
	signed bool
	limbs  mpa.Limbs
}

var _ types.IntValue = TargetInt{}

// New returns a TargetInt from limbs in canonical form. It panics if ls is
// not canonical for the given precision and signedness.
func New(prec int, signed bool, ls mpa.Limbs) TargetInt {
	t := TargetInt{prec: prec, signed: signed, limbs: ls}
	if prec <= 0 {
		panic(fmt.Errorf("targetint: invalid precision %d", prec))
	}
	if ls.Len() != t.nLimbs() {
		panic(fmt.Errorf("targetint: %d limbs for width %d", ls.Len(), t.Width()))
	}
	if !signed && ls.IsAnySetAtOrAbove(prec) {
		panic(fmt.Errorf("targetint: unsigned value %s exceeds precision %d", ls, prec))
	}
	if signed && ls.Width()-ls.Clrsb() > t.Width() {
		panic(fmt.Errorf("targetint: signed value exceeds width %d", t.Width()))
	}
	return t
}

// FromInt64 returns v as a signed 64 bit integer, like C's long on LP64.
func FromInt64(v int64) TargetInt {
	return New(63, true, mpa.FromUint64(uint64(v))) //nolint:gosec // G115: two's complement bit pattern is intended.
}

// FromUint64 returns v as an unsigned 64 bit integer.
func FromUint64(v uint64) TargetInt {
	return New(64, false, mpa.FromUint64(v))
}

// FromMagnitude returns the value -mag if negative is set, mag otherwise,
// at the given precision. ErrOverflow is returned if it does not fit.
func FromMagnitude(mag mpa.Limbs, negative bool, prec int, signed bool) (TargetInt, error) {
	if prec <= 0 {
		return TargetInt{}, fmt.Errorf("targetint: invalid precision %d", prec)
	}
	width := prec
	if signed {
		width++
	}
	n := mpa.WidthToSize(width)
	if mag.IsZero() {
		return New(prec, signed, mpa.Zero(n)), nil
	}
	if negative {
		if !signed {
			return TargetInt{}, fmt.Errorf("%w: -%s is negative for an unsigned type", ErrOverflow, mag)
		}
		// -2^prec is the only negative value whose magnitude needs prec+1 bits.
		if mag.IsAnySetAtOrAbove(prec) && (mag.Fls() != prec+1 || mag.IsAnySetBelow(prec)) {
			return TargetInt{}, fmt.Errorf("%w: -%s does not fit %d bits", ErrOverflow, mag, width)
		}
		ls := mag.Resize(n).Complement().SetBitsAtAndAbove(prec, true)
		return New(prec, signed, ls), nil
	}
	if mag.IsAnySetAtOrAbove(prec) {
		return TargetInt{}, fmt.Errorf("%w: %s does not fit %d bits", ErrOverflow, mag, width)
	}
	return New(prec, signed, mag.Resize(n)), nil
}

// Prec returns the number of value bits.
func (t TargetInt) Prec() int { return t.prec }

// IsSigned reports whether the integer type is signed.
func (t TargetInt) IsSigned() bool { return t.signed }

// Width returns the precision plus the sign bit, if any.
func (t TargetInt) Width() int {
	if t.signed {
		return t.prec + 1
	}
	return t.prec
}

// Limbs returns the two's complement representation.
func (t TargetInt) Limbs() mpa.Limbs { return t.limbs }

func (t TargetInt) nLimbs() int { return mpa.WidthToSize(t.Width()) }

// IsNegative reports whether the value is below zero.
func (t TargetInt) IsNegative() bool {
	return t.signed && t.limbs.TestBit(t.prec)
}

// IsZero reports whether the value is zero.
func (t TargetInt) IsZero() bool { return t.limbs.IsZero() }

// MinRequiredWidth returns the number of bits needed to represent the value:
// for a negative value including its sign bit, for any other value its
// magnitude only. Zero needs no bits.
func (t TargetInt) MinRequiredWidth() int {
	if t.IsNegative() {
		return t.limbs.Width() - t.limbs.Clrsb()
	}
	return t.limbs.Fls()
}

// Convert reinterprets the value at a new precision and signedness with C
// conversion semantics: the value is reduced modulo 2^width of the new type.
func (t TargetInt) Convert(prec int, signed bool) TargetInt {
	if prec <= 0 {
		panic(fmt.Errorf("targetint: invalid precision %d", prec))
	}
	width := prec
	if signed {
		width++
	}
	n := mpa.WidthToSize(width)
	ls := t.limbs
	if n > ls.Len() {
		ls = ls.Resize(n).SetBitsAtAndAbove(t.limbs.Width(), t.IsNegative())
	} else {
		ls = ls.Resize(n)
	}
	if signed {
		ls = ls.SetBitsAtAndAbove(prec, ls.TestBit(prec))
	} else {
		ls = ls.SetBitsAtAndAbove(prec, false)
	}
	return New(prec, signed, ls)
}

// ConvertChecked is like Convert but returns ErrOverflow if the value
// changes.
func (t TargetInt) ConvertChecked(prec int, signed bool) (TargetInt, error) {
	r := t.Convert(prec, signed)
	if !sameValue(t, r) {
		return TargetInt{}, fmt.Errorf("%w: %s does not fit %d bits", ErrOverflow, t, r.Width())
	}
	return r, nil
}

// ConvertTo implements types.IntValue.
func (t TargetInt) ConvertTo(prec int, signed bool) (types.IntValue, error) {
	r, err := t.ConvertChecked(prec, signed)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func sameValue(a, b TargetInt) bool {
	if a.IsNegative() != b.IsNegative() {
		return false
	}
	n := max(a.limbs.Len(), b.limbs.Len())
	fill := a.IsNegative()
	x := a.limbs.Resize(n).SetBitsAtAndAbove(a.limbs.Width(), fill)
	y := b.limbs.Resize(n).SetBitsAtAndAbove(b.limbs.Width(), fill)
	return x.Equal(y)
}

// Int64 returns the value as int64 or ErrOverflow.
func (t TargetInt) Int64() (int64, error) {
	r, err := t.ConvertChecked(63, true)
	if err != nil {
		return 0, err
	}
	return int64(r.limbs.Limb(0)), nil //nolint:gosec // G115: two's complement bit pattern is intended.
}

// Uint64 returns the value as uint64 or ErrOverflow.
func (t TargetInt) Uint64() (uint64, error) {
	r, err := t.ConvertChecked(64, false)
	if err != nil {
		return 0, err
	}
	return uint64(r.limbs.Limb(0)), nil
}

// Magnitude returns the absolute value as unsigned limbs.
func (t TargetInt) Magnitude() mpa.Limbs {
	if t.IsNegative() {
		return t.limbs.Complement()
	}
	return t.limbs
}

// Text formats the value in the given base with a leading '-' if negative.
func (t TargetInt) Text(base int) (string, error) {
	s, err := t.Magnitude().ToString(base)
	if err != nil {
		return "", err
	}
	if t.IsNegative() {
		return "-" + s, nil
	}
	return s, nil
}

// String formats the value in decimal.
func (t TargetInt) String() string {
	s, err := t.Text(10)
	if err != nil {
		return "<format-error>"
	}
	return s
}

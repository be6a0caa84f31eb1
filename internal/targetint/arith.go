package targetint

import (
	"fmt"

	"ccabi/internal/mpa"
)

func (t TargetInt) mustMatch(op TargetInt) {
	if t.prec != op.prec || t.signed != op.signed {
		panic(fmt.Errorf("targetint: mixed operand types (%d, %v) and (%d, %v)", t.prec, t.signed, op.prec, op.signed))
	}
}

// canonical resizes ls to t's limb count and brings the bits at and above
// the precision into canonical form.
func (t TargetInt) canonical(ls mpa.Limbs) TargetInt {
	ls = ls.Resize(t.nLimbs())
	if t.signed {
		ls = ls.SetBitsAtAndAbove(t.prec, ls.TestBit(t.prec))
	} else {
		ls = ls.SetBitsAtAndAbove(t.prec, false)
	}
	return TargetInt{prec: t.prec, signed: t.signed, limbs: ls}
}

func (t TargetInt) overflow(op string, rhs TargetInt) error {
	return fmt.Errorf("%w: %s %s %s", ErrOverflow, t, op, rhs)
}

// Cmp compares the values of t and op.
func (t TargetInt) Cmp(op TargetInt) int {
	t.mustMatch(op)
	tn, on := t.IsNegative(), op.IsNegative()
	switch {
	case tn && !on:
		return -1
	case !tn && on:
		return 1
	}
	return t.limbs.Cmp(op.limbs)
}

// Equal reports whether t and op hold the same value.
func (t TargetInt) Equal(op TargetInt) bool { return t.Cmp(op) == 0 }

// Neg returns -t. Negating the most negative signed value overflows.
// Unsigned negation wraps.
func (t TargetInt) Neg() (TargetInt, error) {
	if t.signed && t.IsNegative() && t.limbs.Complement().TestBit(t.prec) {
		return TargetInt{}, fmt.Errorf("%w: -(%s)", ErrOverflow, t)
	}
	return t.canonical(t.limbs.Complement()), nil
}

// Not returns ^t.
func (t TargetInt) Not() TargetInt {
	return t.canonical(t.limbs.Not())
}

// Add returns t+op. Signed overflow is an error, unsigned addition wraps.
func (t TargetInt) Add(op TargetInt) (TargetInt, error) {
	t.mustMatch(op)
	ls := t.limbs.Add(op.limbs)
	if t.signed && t.IsNegative() == op.IsNegative() && ls.TestBit(t.prec) != t.IsNegative() {
		return TargetInt{}, t.overflow("+", op)
	}
	return t.canonical(ls), nil
}

// Sub returns t-op. Signed overflow is an error, unsigned subtraction wraps.
func (t TargetInt) Sub(op TargetInt) (TargetInt, error) {
	t.mustMatch(op)
	ls := t.limbs.Sub(op.limbs)
	if t.signed && t.IsNegative() != op.IsNegative() && ls.TestBit(t.prec) != t.IsNegative() {
		return TargetInt{}, t.overflow("-", op)
	}
	return t.canonical(ls), nil
}

// Mul returns t*op. Signed overflow is an error, unsigned multiplication
// wraps.
func (t TargetInt) Mul(op TargetInt) (TargetInt, error) {
	t.mustMatch(op)
	if !t.signed {
		return t.canonical(t.limbs.Mul(op.limbs)), nil
	}
	p := t.Magnitude().Mul(op.Magnitude())
	r, err := FromMagnitude(p, t.IsNegative() != op.IsNegative(), t.prec, true)
	if err != nil {
		return TargetInt{}, t.overflow("*", op)
	}
	return r, nil
}

func (t TargetInt) divMod(op TargetInt, sym string) (TargetInt, TargetInt, error) {
	t.mustMatch(op)
	if op.IsZero() {
		return TargetInt{}, TargetInt{}, fmt.Errorf("%w: %s %s %s", ErrDivByZero, t, sym, op)
	}
	q, r, err := t.Magnitude().DivMod(op.Magnitude())
	if err != nil {
		return TargetInt{}, TargetInt{}, err
	}
	// C truncates towards zero: the remainder takes the dividend's sign.
	quot, err := FromMagnitude(q, t.IsNegative() != op.IsNegative(), t.prec, t.signed)
	if err != nil {
		return TargetInt{}, TargetInt{}, t.overflow(sym, op)
	}
	rem, err := FromMagnitude(r, t.IsNegative(), t.prec, t.signed)
	if err != nil {
		return TargetInt{}, TargetInt{}, t.overflow(sym, op)
	}
	return quot, rem, nil
}

// Div returns t/op rounded towards zero.
func (t TargetInt) Div(op TargetInt) (TargetInt, error) {
	q, _, err := t.divMod(op, "/")
	return q, err
}

// Mod returns the remainder of t/op, which has the sign of t.
func (t TargetInt) Mod(op TargetInt) (TargetInt, error) {
	_, r, err := t.divMod(op, "%")
	return r, err
}

// And returns t&op.
func (t TargetInt) And(op TargetInt) TargetInt {
	t.mustMatch(op)
	return t.canonical(t.limbs.And(op.limbs))
}

// Or returns t|op.
func (t TargetInt) Or(op TargetInt) TargetInt {
	t.mustMatch(op)
	return t.canonical(t.limbs.Or(op.limbs))
}

// Xor returns t^op.
func (t TargetInt) Xor(op TargetInt) TargetInt {
	t.mustMatch(op)
	return t.canonical(t.limbs.Xor(op.limbs))
}

// Shl returns t<<distance. Shifting by the width or more, or shifting
// significant bits into or past the sign of a signed value, overflows.
func (t TargetInt) Shl(distance int) (TargetInt, error) {
	if distance < 0 || distance >= t.Width() {
		return TargetInt{}, fmt.Errorf("%w: shift count %d for width %d", ErrOverflow, distance, t.Width())
	}
	ls := t.limbs.Lsh(distance)
	if t.signed && (ls.Width()-ls.Clrsb() > t.Width() || ls.TestBit(t.prec) != t.IsNegative()) {
		return TargetInt{}, fmt.Errorf("%w: %s << %d", ErrOverflow, t, distance)
	}
	return t.canonical(ls), nil
}

// Shr returns t>>distance, shifting in copies of the sign for negative
// values.
func (t TargetInt) Shr(distance int) (TargetInt, error) {
	if distance < 0 || distance >= t.Width() {
		return TargetInt{}, fmt.Errorf("%w: shift count %d for width %d", ErrOverflow, distance, t.Width())
	}
	return t.canonical(t.limbs.Rsh(distance, t.IsNegative())), nil
}

package mpa

import (
	"fmt"
	"math/bits"
)

// LimbWidth is the number of bits in a Limb.
const LimbWidth = 64

const limbMax = ^Limb(0)

// Limb is a single machine word of multi-precision arithmetic.
type Limb uint64

// Mask returns a Limb with the low width bits set.
func Mask(width int) Limb {
	if width < 0 || width > LimbWidth {
		panic(fmt.Errorf("mpa: mask width %d out of range", width))
	}
	if width == LimbWidth {
		return limbMax
	}
	return Limb(1)<<width - 1
}

// Fls returns the 1-based index of the highest set bit, 0 if l is zero.
func (l Limb) Fls() int {
	return bits.Len64(uint64(l))
}

// Ffs returns the 1-based index of the lowest set bit, 0 if l is zero.
func (l Limb) Ffs() int {
	if l == 0 {
		return 0
	}
	return bits.TrailingZeros64(uint64(l)) + 1
}

// Clz returns the number of leading zero bits.
func (l Limb) Clz() int {
	return LimbWidth - l.Fls()
}

// Clrsb returns the number of bits following the sign bit that are equal to it.
func (l Limb) Clrsb() int {
	if l>>(LimbWidth-1) != 0 {
		return (^l).Clz() - 1
	}
	return l.Clz() - 1
}

// Add returns l+op and whether the addition carried out.
func (l Limb) Add(op Limb) (Limb, bool) {
	sum, carry := bits.Add64(uint64(l), uint64(op), 0)
	return Limb(sum), carry != 0
}

// AddCarry returns l plus the carry bit and whether that overflowed.
func (l Limb) AddCarry(carry bool) (Limb, bool) {
	if !carry {
		return l, false
	}
	return l + 1, l == limbMax
}

// Sub returns l-op and whether the subtraction borrowed.
func (l Limb) Sub(op Limb) (Limb, bool) {
	diff, borrow := bits.Sub64(uint64(l), uint64(op), 0)
	return Limb(diff), borrow != 0
}

// SubBorrow returns l minus the borrow bit and whether that underflowed.
func (l Limb) SubBorrow(borrow bool) (Limb, bool) {
	if !borrow {
		return l, false
	}
	return l - 1, l == 0
}

// Mul returns the full double width product of l and op.
func (l Limb) Mul(op Limb) DoubleLimb {
	hi, lo := bits.Mul64(uint64(l), uint64(op))
	return DoubleLimb{High: Limb(hi), Low: Limb(lo)}
}

// Reverse reverses the order of the group-bit wide groups within l.
// Reverse(8) swaps bytes, Reverse(1) mirrors all bits.
func (l Limb) Reverse(group int) Limb {
	if group <= 0 || group > LimbWidth || LimbWidth%group != 0 {
		panic(fmt.Errorf("mpa: invalid bit group width %d", group))
	}
	switch group {
	case 1:
		return Limb(bits.Reverse64(uint64(l)))
	case 8:
		return Limb(bits.ReverseBytes64(uint64(l)))
	case LimbWidth:
		return l
	}
	var r Limb
	m := Mask(group)
	for i := 0; i < LimbWidth; i += group {
		r = r<<group | (l>>i)&m
	}
	return r
}

package mpa

import "fmt"

// Not returns the bitwise complement of a.
func (a Limbs) Not() Limbs {
	out := make([]Limb, len(a.limbs))
	for i, l := range a.limbs {
		out[i] = ^l
	}
	return Limbs{limbs: out}
}

// And returns a&b with max(a.Len(), b.Len()) limbs.
func (a Limbs) And(b Limbs) Limbs {
	return combine(a, b, func(x, y Limb) Limb { return x & y })
}

// Or returns a|b with max(a.Len(), b.Len()) limbs.
func (a Limbs) Or(b Limbs) Limbs {
	return combine(a, b, func(x, y Limb) Limb { return x | y })
}

// Xor returns a^b with max(a.Len(), b.Len()) limbs.
func (a Limbs) Xor(b Limbs) Limbs {
	return combine(a, b, func(x, y Limb) Limb { return x ^ y })
}

func combine(a, b Limbs, op func(x, y Limb) Limb) Limbs {
	out := make([]Limb, max(len(a.limbs), len(b.limbs)))
	for i := range out {
		out[i] = op(a.at(i), b.at(i))
	}
	return Limbs{limbs: out}
}

// Fls returns the 1-based index of the highest set bit, 0 if none is set.
func (a Limbs) Fls() int {
	for n := len(a.limbs) - 1; n >= 0; n-- {
		if a.limbs[n] != 0 {
			return n*LimbWidth + a.limbs[n].Fls()
		}
	}
	return 0
}

// Ffs returns the 1-based index of the lowest set bit, 0 if none is set.
func (a Limbs) Ffs() int {
	for n, l := range a.limbs {
		if l != 0 {
			return n*LimbWidth + l.Ffs()
		}
	}
	return 0
}

// Clrsb returns the number of bits below the most significant one which are
// equal to it.
func (a Limbs) Clrsb() int {
	if len(a.limbs) == 0 {
		return 0
	}
	top := a.limbs[len(a.limbs)-1]
	sign := top>>(LimbWidth-1) != 0
	var allSign Limb
	if sign {
		allSign = limbMax
	}

	n := len(a.limbs)
	for n > 0 && a.limbs[n-1] == allSign {
		n--
	}
	if n == 0 {
		return a.Width() - 1
	}

	result := (len(a.limbs) - n) * LimbWidth
	if (a.limbs[n-1]>>(LimbWidth-1) != 0) == sign {
		result += a.limbs[n-1].Clrsb()
	} else if result > 0 {
		result--
	}
	return result
}

func (a Limbs) checkPos(pos int, inclusive bool) {
	limit := a.Width()
	if pos < 0 || pos > limit || (!inclusive && pos == limit) {
		panic(fmt.Errorf("mpa: bit position %d out of range for width %d", pos, limit))
	}
}

// TestBit reports whether bit i is set.
func (a Limbs) TestBit(i int) bool {
	a.checkPos(i, false)
	return a.limbs[i/LimbWidth]>>(i%LimbWidth)&1 != 0
}

// SetBit returns a copy of a with bit i set to value.
func (a Limbs) SetBit(i int, value bool) Limbs {
	a.checkPos(i, false)
	out := a.Slice()
	mask := Limb(1) << (i % LimbWidth)
	if value {
		out[i/LimbWidth] |= mask
	} else {
		out[i/LimbWidth] &^= mask
	}
	return Limbs{limbs: out}
}

// SetBitsAtAndAbove returns a copy of a with all bits at positions >= pos
// set to value. A position at or past Width() leaves a unchanged.
func (a Limbs) SetBitsAtAndAbove(pos int, value bool) Limbs {
	if pos < 0 {
		panic(fmt.Errorf("mpa: negative bit position %d", pos))
	}
	out := a.Slice()
	i := pos / LimbWidth
	if i >= len(out) {
		return Limbs{limbs: out}
	}
	if preserved := pos % LimbWidth; preserved != 0 {
		if value {
			out[i] |= limbMax << preserved
		} else {
			out[i] &= Mask(preserved)
		}
		i++
	}
	fill := Limb(0)
	if value {
		fill = limbMax
	}
	for ; i < len(out); i++ {
		out[i] = fill
	}
	return Limbs{limbs: out}
}

// SetBitsBelow returns a copy of a with all bits at positions < pos set to
// value.
func (a Limbs) SetBitsBelow(pos int, value bool) Limbs {
	a.checkPos(pos, true)
	out := a.Slice()
	i := pos / LimbWidth
	if modified := pos % LimbWidth; modified != 0 {
		if value {
			out[i] |= Mask(modified)
		} else {
			out[i] &^= Mask(modified)
		}
	}
	fill := Limb(0)
	if value {
		fill = limbMax
	}
	for ; i > 0; i-- {
		out[i-1] = fill
	}
	return Limbs{limbs: out}
}

// IsAnySetBelow reports whether any bit below position i is set.
func (a Limbs) IsAnySetBelow(i int) bool {
	a.checkPos(i, true)
	n := i / LimbWidth
	if pos := i % LimbWidth; pos != 0 && a.limbs[n]&Mask(pos) != 0 {
		return true
	}
	for ; n > 0; n-- {
		if a.limbs[n-1] != 0 {
			return true
		}
	}
	return false
}

// IsAnySetAtOrAbove reports whether any bit at position i or above is set.
func (a Limbs) IsAnySetAtOrAbove(i int) bool {
	if i >= a.Width() {
		return false
	}
	if i < 0 {
		panic(fmt.Errorf("mpa: negative bit position %d", i))
	}
	n := i / LimbWidth
	if a.limbs[n]>>(i%LimbWidth) != 0 {
		return true
	}
	for n++; n < len(a.limbs); n++ {
		if a.limbs[n] != 0 {
			return true
		}
	}
	return false
}

// AreAllSetBelow reports whether every bit below position i is set.
func (a Limbs) AreAllSetBelow(i int) bool {
	a.checkPos(i, true)
	n := i / LimbWidth
	if pos := i % LimbWidth; pos != 0 && a.limbs[n]&Mask(pos) != Mask(pos) {
		return false
	}
	for ; n > 0; n-- {
		if a.limbs[n-1] != limbMax {
			return false
		}
	}
	return true
}

// AreAllSetAtOrAbove reports whether every bit at position i or above is
// set. It is false for i >= Width().
func (a Limbs) AreAllSetAtOrAbove(i int) bool {
	if i >= a.Width() {
		return false
	}
	if i < 0 {
		panic(fmt.Errorf("mpa: negative bit position %d", i))
	}
	n := i / LimbWidth
	high := ^Mask(i % LimbWidth)
	if a.limbs[n]&high != high {
		return false
	}
	for n++; n < len(a.limbs); n++ {
		if a.limbs[n] != limbMax {
			return false
		}
	}
	return true
}

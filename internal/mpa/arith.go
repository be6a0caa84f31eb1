package mpa

// Add returns a+b. The result has max(a.Len(), b.Len()) limbs plus one if
// the addition carried out.
func (a Limbs) Add(b Limbs) Limbs {
	n := max(len(a.limbs), len(b.limbs))
	out := make([]Limb, n, n+1)
	var carry bool
	for i := range out {
		s, c1 := a.at(i).AddCarry(carry)
		s, c2 := s.Add(b.at(i))
		out[i] = s
		carry = c1 || c2
	}
	if carry {
		out = append(out, 1)
	}
	return Limbs{limbs: out}
}

// Sub returns a-b. The result has max(a.Len(), b.Len()) limbs; on a borrow
// out an all-ones limb is appended, which sign extends the two's complement
// result.
func (a Limbs) Sub(b Limbs) Limbs {
	n := max(len(a.limbs), len(b.limbs))
	out := make([]Limb, n, n+1)
	var borrow bool
	for i := range out {
		d, b1 := a.at(i).SubBorrow(borrow)
		d, b2 := d.Sub(b.at(i))
		out[i] = d
		borrow = b1 || b2
	}
	if borrow {
		out = append(out, limbMax)
	}
	return Limbs{limbs: out}
}

// Mul returns a*b with a.Len()+b.Len() limbs.
func (a Limbs) Mul(b Limbs) Limbs {
	m, n := len(a.limbs), len(b.limbs)
	out := make([]Limb, m+n)
	for j := 0; j < n; j++ {
		var carry Limb
		for i := 0; i < m; i++ {
			// (2^W-1)^2 + 2(2^W-1) == 2^2W-1, so neither addition overflows.
			t := a.limbs[i].Mul(b.limbs[j])
			t, _ = t.Add(carry)
			t, _ = t.Add(out[i+j])
			out[i+j] = t.Low
			carry = t.High
		}
		out[j+m] = carry
	}
	return Limbs{limbs: out}
}

// Complement returns the two's complement negation of a at the same width.
func (a Limbs) Complement() Limbs {
	out := make([]Limb, len(a.limbs))
	carry := true
	for i, l := range a.limbs {
		out[i], carry = (^l).AddCarry(carry)
	}
	return Limbs{limbs: out}
}

// AddSigned adds a and b, both read as two's complement numbers of their
// respective widths. The narrower operand is sign extended first. The result
// is shrunk to the fewest limbs that still represent the signed sum, or grown
// by one limb if the sum of two non-negative operands reached the sign bit.
func (a Limbs) AddSigned(b Limbs) Limbs {
	w1, w2 := a.Width(), b.Width()
	if w1 == 0 {
		return b
	}
	if w2 == 0 {
		return a
	}

	neg1 := a.TestBit(w1 - 1)
	neg2 := b.TestBit(w2 - 1)
	maxW := max(w1, w2)
	op1, op2 := a, b
	if w1 < maxW {
		op1 = op1.Resize(WidthToSize(maxW)).SetBitsAtAndAbove(w1, neg1)
	} else if w2 < maxW {
		op2 = op2.Resize(WidthToSize(maxW)).SetBitsAtAndAbove(w2, neg2)
	}

	r := op1.Add(op2)
	switch {
	case !neg1 && !neg2:
		if r.TestBit(maxW - 1) {
			// Keep room for the sign bit.
			return r.Resize(WidthToSize(maxW) + 1)
		}
	case neg1 && neg2:
		// The carry out of maxW is the sign; spread it upwards.
		r = r.SetBitsAtAndAbove(maxW, true)
	default:
		if r.Width() > maxW {
			r = r.SetBit(maxW, false)
		}
	}
	return r.Resize(WidthToSize(r.Width() - r.Clrsb()))
}

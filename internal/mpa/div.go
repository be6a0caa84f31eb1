package mpa

// DivMod returns the quotient and remainder of a divided by divisor.
// The quotient has a.Len()-n+1 limbs and the remainder n limbs, n being the
// index of the divisor's most significant non-zero limb plus one. If a has
// fewer than n limbs the quotient is empty and the remainder is a.
func (a Limbs) DivMod(divisor Limbs) (Limbs, Limbs, error) {
	n := len(divisor.limbs)
	for n > 0 && divisor.limbs[n-1] == 0 {
		n--
	}
	if n == 0 {
		return Limbs{}, Limbs{}, ErrDivByZero
	}
	if len(a.limbs) < n {
		return Limbs{}, New(a.limbs...), nil
	}
	if n == 1 {
		return a.divModLimb(divisor.limbs[0])
	}
	m := len(a.limbs) - n

	// Knuth, TAOCP vol. 2, 4.3.1, Algorithm D.
	//
	// Scale by d = b/(v[n-1]+1) so that v[n-1] >= b/2.
	var d Limb
	if vHigh := divisor.limbs[n-1]; vHigh == limbMax {
		d = 1
	} else {
		dv := limbMax / (vHigh + 1)
		if limbMax-dv*(vHigh+1) == vHigh {
			dv++
		}
		d = dv
	}

	v := make([]Limb, n, n+1)
	if carry := scaleLimbs(v, divisor.limbs[:n], d); carry != 0 {
		panic("mpa: divisor normalization overflowed")
	}
	// A zero limb past the divisor's end lets the multiply and subtract
	// loop below run uniformly over n+1 limbs.
	v = append(v, 0)

	u := make([]Limb, len(a.limbs), len(a.limbs)+1)
	u = append(u, scaleLimbs(u, a.limbs, d))

	q := make([]Limb, m+1)
	for j := m; j >= 0; j-- {
		qhat, r, err := DoubleLimb{High: u[j+n], Low: u[j+n-1]}.Div(v[n-1])
		if err != nil {
			return Limbs{}, Limbs{}, err
		}
		recheck := true
		if qhat.High != 0 {
			// q >= b, which only happens for u[j+n] == v[n-1].
			qhat = DoubleLimb{Low: limbMax}
			var overflow bool
			r, overflow = u[j+n-1].Add(v[n-1])
			recheck = !overflow
		}
		for recheck {
			t := qhat.Low.Mul(v[n-2])
			if t.High > r || (t.High == r && t.Low > u[j+n-2]) {
				qhat.Low--
				var overflow bool
				r, overflow = r.Add(v[n-1])
				recheck = !overflow
			} else {
				recheck = false
			}
		}

		// Multiply and subtract.
		var borrow Limb
		for i := 0; i <= n; i++ {
			p := v[i].Mul(qhat.Low)
			lu, b1 := u[j+i].Sub(borrow)
			lu, b2 := lu.Sub(p.Low)
			borrow = p.High + boolLimb(b1) + boolLimb(b2)
			u[j+i] = lu
		}

		if borrow != 0 {
			// qhat was one too large; add v back.
			qhat.Low--
			var carry bool
			for i := 0; i <= n; i++ {
				s, c1 := u[j+i].AddCarry(carry)
				s, c2 := s.Add(v[i])
				u[j+i] = s
				carry = c1 || c2
			}
		}
		q[j] = qhat.Low
	}

	// Undo the scaling on the remainder.
	var r Limb
	for j := n - 1; j >= 0; j-- {
		t, rem, err := DoubleLimb{High: r, Low: u[j]}.Div(d)
		if err != nil {
			return Limbs{}, Limbs{}, err
		}
		u[j] = t.Low
		r = rem
	}

	return Limbs{limbs: q}, Limbs{limbs: u[:n:n]}, nil
}

// divModLimb is the short division by a single non-zero limb.
func (a Limbs) divModLimb(divisor Limb) (Limbs, Limbs, error) {
	q := make([]Limb, len(a.limbs))
	var r Limb
	for j := len(a.limbs) - 1; j >= 0; j-- {
		t, rem, err := DoubleLimb{High: r, Low: a.limbs[j]}.Div(divisor)
		if err != nil {
			return Limbs{}, Limbs{}, err
		}
		q[j] = t.Low
		r = rem
	}
	return Limbs{limbs: q}, Limbs{limbs: []Limb{r}}, nil
}

// scaleLimbs stores src*f into dst and returns the carry limb.
func scaleLimbs(dst, src []Limb, f Limb) Limb {
	var carry Limb
	for i, l := range src {
		p, _ := l.Mul(f).Add(carry)
		dst[i] = p.Low
		carry = p.High
	}
	return carry
}

func boolLimb(b bool) Limb {
	if b {
		return 1
	}
	return 0
}

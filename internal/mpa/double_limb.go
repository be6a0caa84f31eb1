package mpa

// DoubleLimb is a two limb wide scratch register.
type DoubleLimb struct {
	High Limb
	Low  Limb
}

const (
	halfWidth = LimbWidth / 2
	halfBase  = uint64(1) << halfWidth
	halfMask  = halfBase - 1
)

// Add returns d+op and whether the addition carried out of High.
func (d DoubleLimb) Add(op Limb) (DoubleLimb, bool) {
	lo, carry := d.Low.Add(op)
	hi, overflow := d.High.AddCarry(carry)
	return DoubleLimb{High: hi, Low: lo}, overflow
}

// Div divides d by divisor and returns the two limb quotient and the
// remainder. It returns ErrDivByZero for a zero divisor.
//
// The dividend is treated as four half-limb digits and the divisor as one or
// two, so every intermediate product fits into a single Limb. This is
// Algorithm D from Knuth, TAOCP vol. 2, 4.3.1.
func (d DoubleLimb) Div(divisor Limb) (DoubleLimb, Limb, error) {
	if divisor == 0 {
		return DoubleLimb{}, 0, ErrDivByZero
	}
	if d.High == 0 {
		return DoubleLimb{Low: d.Low / divisor}, d.Low % divisor, nil
	}

	u := [5]uint64{
		uint64(d.Low) & halfMask,
		uint64(d.Low) >> halfWidth,
		uint64(d.High) & halfMask,
		uint64(d.High) >> halfWidth,
		0,
	}
	v := [2]uint64{uint64(divisor) & halfMask, uint64(divisor) >> halfWidth}
	var q [4]uint64

	if v[1] == 0 {
		var r uint64
		for j := 3; j >= 0; j-- {
			cur := r<<halfWidth | u[j]
			q[j] = cur / v[0]
			r = cur % v[0]
		}
		return joinHalves(q), Limb(r), nil
	}

	// Scale so that the leading divisor digit is at least halfBase/2.
	scale := halfBase / (v[1] + 1)
	scaleHalves(v[:], scale)
	u[4] = scaleHalves(u[:4], scale)

	const n = 2
	for j := 2; j >= 0; j-- {
		num := u[j+n]<<halfWidth | u[j+n-1]
		qhat := num / v[n-1]
		rhat := num % v[n-1]
		for qhat >= halfBase || qhat*v[n-2] > rhat<<halfWidth|u[j+n-2] {
			qhat--
			rhat += v[n-1]
			if rhat >= halfBase {
				break
			}
		}

		var k int64
		for i := 0; i < n; i++ {
			p := qhat * v[i]
			t := int64(u[i+j]) - k - int64(p&halfMask) //nolint:gosec // G115: both operands are below 2^32.
			u[i+j] = uint64(t) & halfMask              //nolint:gosec // G115: two's complement digit extraction.
			k = int64(p>>halfWidth) - t>>halfWidth     //nolint:gosec // G115: high half is below 2^32.
		}
		t := int64(u[j+n]) - k        //nolint:gosec // G115: digit is below 2^32.
		u[j+n] = uint64(t) & halfMask //nolint:gosec // G115: two's complement digit extraction.

		if t < 0 {
			qhat--
			var c uint64
			for i := 0; i < n; i++ {
				s := u[i+j] + v[i] + c
				u[i+j] = s & halfMask
				c = s >> halfWidth
			}
			u[j+n] = (u[j+n] + c) & halfMask
		}
		q[j] = qhat
	}

	// Undo the scaling on the remainder.
	var r uint64
	for i := n - 1; i >= 0; i-- {
		cur := r<<halfWidth | u[i]
		u[i] = cur / scale
		r = cur % scale
	}
	return joinHalves(q), Limb(u[1]<<halfWidth | u[0]), nil
}

func scaleHalves(x []uint64, f uint64) uint64 {
	var carry uint64
	for i := range x {
		t := x[i]*f + carry
		x[i] = t & halfMask
		carry = t >> halfWidth
	}
	return carry
}

func joinHalves(q [4]uint64) DoubleLimb {
	return DoubleLimb{
		High: Limb(q[3]<<halfWidth | q[2]),
		Low:  Limb(q[1]<<halfWidth | q[0]),
	}
}

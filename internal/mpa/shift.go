package mpa

import "fmt"

// Lsh returns a shifted left by distance bits. The limb count is kept, bits
// shifted out past Width() are dropped.
func (a Limbs) Lsh(distance int) Limbs {
	if distance < 0 {
		panic(fmt.Errorf("mpa: negative shift distance %d", distance))
	}
	out := make([]Limb, len(a.limbs))
	if distance == 0 {
		copy(out, a.limbs)
		return Limbs{limbs: out}
	}
	if distance >= a.Width() {
		return Limbs{limbs: out}
	}

	offset := distance / LimbWidth
	lowBits := distance % LimbWidth
	if lowBits == 0 {
		copy(out[offset:], a.limbs)
		return Limbs{limbs: out}
	}
	for j := len(out) - 1; j > offset; j-- {
		out[j] = a.limbs[j-offset]<<lowBits | a.limbs[j-offset-1]>>(LimbWidth-lowBits)
	}
	out[offset] = a.limbs[0] << lowBits
	return Limbs{limbs: out}
}

// Rsh returns a shifted right by distance bits with the vacated high bits set
// to fill. The limb count is kept.
func (a Limbs) Rsh(distance int, fill bool) Limbs {
	if distance < 0 {
		panic(fmt.Errorf("mpa: negative shift distance %d", distance))
	}
	out := make([]Limb, len(a.limbs))
	if distance == 0 {
		copy(out, a.limbs)
		return Limbs{limbs: out}
	}
	var fillLimb Limb
	if fill {
		fillLimb = limbMax
	}
	if distance >= a.Width() {
		for i := range out {
			out[i] = fillLimb
		}
		return Limbs{limbs: out}
	}

	offset := distance / LimbWidth
	highBits := distance % LimbWidth
	n := len(out)
	if highBits == 0 {
		copy(out, a.limbs[offset:])
	} else {
		for j := 0; j+offset+1 < n; j++ {
			out[j] = a.limbs[j+offset]>>highBits | a.limbs[j+offset+1]<<(LimbWidth-highBits)
		}
		out[n-offset-1] = a.limbs[n-1]>>highBits | fillLimb<<(LimbWidth-highBits)
	}
	for j := n - offset; j < n; j++ {
		out[j] = fillLimb
	}
	return Limbs{limbs: out}
}

// Align rounds a up to a multiple of 1<<log2. The result grows by a limb if
// the rounding carries out.
func (a Limbs) Align(log2 int) Limbs {
	if log2 == 0 {
		return a
	}
	add := Zero(WidthToSize(log2)).SetBitsBelow(log2, true)
	return a.Add(add).SetBitsBelow(log2, false)
}

// AlignDown rounds a down to a multiple of 1<<log2.
func (a Limbs) AlignDown(log2 int) Limbs {
	if log2 > a.Width() {
		return Zero(len(a.limbs))
	}
	return a.SetBitsBelow(log2, false)
}

package types

import "fmt"

// Alignment is an optional alignment requirement given as the log2 of a byte
// count. The zero value means "not specified", which is distinct from a
// 1-byte alignment (log2 0).
type Alignment struct {
	log2 int
	set  bool
}

// NoAlignment is the unspecified alignment.
var NoAlignment = Alignment{}

// AlignLog2 returns an alignment of 1<<log2 bytes.
func AlignLog2(log2 int) Alignment {
	if log2 < 0 {
		panic(fmt.Errorf("types: negative alignment log2 %d", log2))
	}
	return Alignment{log2: log2, set: true}
}

// AlignBytes returns an alignment of n bytes. n must be a power of two.
func AlignBytes(n uint64) (Alignment, error) {
	if n == 0 || n&(n-1) != 0 {
		return Alignment{}, fmt.Errorf("requested alignment %d is not a positive power of 2", n)
	}
	log2 := 0
	for n > 1 {
		n >>= 1
		log2++
	}
	return AlignLog2(log2), nil
}

// IsSet reports whether an alignment was specified.
func (a Alignment) IsSet() bool { return a.set }

// Log2 returns the log2 of the byte alignment and whether it is set.
func (a Alignment) Log2() (int, bool) { return a.log2, a.set }

// Bytes returns the alignment in bytes, 0 if unset.
func (a Alignment) Bytes() uint64 {
	if !a.set {
		return 0
	}
	return uint64(1) << a.log2
}

// Ffs returns the alignment encoded as log2+1, 0 meaning unset.
func (a Alignment) Ffs() int {
	if !a.set {
		return 0
	}
	return a.log2 + 1
}

func (a Alignment) String() string {
	if !a.set {
		return "unset"
	}
	return fmt.Sprintf("%d", a.Bytes())
}

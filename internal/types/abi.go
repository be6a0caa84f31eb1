package types

import "ccabi/internal/mpa"

// ABI is the part of a target description needed to compute sizes and
// alignments of types. Alignments are log2 of a byte count.
type ABI interface {
	IntWidth(k IntKind) int
	IntSize(k IntKind) mpa.Limbs
	IntAlignment(k IntKind) int
	IsCharSigned() bool
	FloatSize(k FloatKind, complex bool) mpa.Limbs
	FloatAlignment(k FloatKind, complex bool) int
	PointerSize() mpa.Limbs
	PointerAlignment() int
}

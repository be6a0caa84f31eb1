// Package mpa implements the multi-precision integer substrate used for type
// sizes, alignments and integer constants.
//
// A Limb is one 64-bit machine word. A DoubleLimb is a (High, Low) pair used
// as a widening register for multiplication and as the dividend of a single
// limb division step. Limbs is a little-endian sequence of Limb representing
// an unsigned bit string whose width is a multiple of LimbWidth.
//
// Limbs values are immutable: every operation returns a fresh value and never
// writes through to its operands, so values may be shared freely between
// goroutines. Signedness is never stored; operations that need a two's
// complement reading (Clrsb, AddSigned, Complement) say so.
package mpa

package types

import "fmt"

// MemberType is the type of a struct or union member: an ObjectType or a
// *Bitfield.
type MemberType interface {
	Type
	isMember()
}

// Bitfield is the type of a bitfield member.
type Bitfield struct {
	Base   IntegerType
	Width  int
	Packed bool
	Align  Alignment
}

func (*Bitfield) Kind() Kind { return KindBitfield }
func (*Bitfield) isType()    {}
func (*Bitfield) isMember()  {}

func (b *Bitfield) String() string {
	s := fmt.Sprintf("%s : %d", b.Base, b.Width)
	if b.Packed {
		s += " __attribute__((packed))"
	}
	return withAlign(s, b.Align)
}

// BaseAlignment returns the effective alignment of the base type as log2
// bytes.
func (b *Bitfield) BaseAlignment(abi ABI) int {
	return EffectiveAlignment(b.Base, abi)
}

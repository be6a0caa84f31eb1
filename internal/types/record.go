package types

import (
	"ccabi/internal/mpa"
	"ccabi/internal/source"
)

// Member is a struct or union member. Anonymous struct and union members
// have an empty Name and a Record type.
type Member struct {
	Name string
	Type MemberType
	// Packed and Aligned are the member's own attributes.
	Packed  bool
	Aligned Alignment
	Span    source.Span

	// Filled in by layout.
	laidOut   bool
	hasOffset bool
	offset    mpa.Limbs
	bitPos    int
}

// IsAnonymousRecord reports whether the member is an unnamed struct or
// union whose members are reachable from the enclosing record.
func (m *Member) IsAnonymousRecord() bool {
	if m.Name != "" {
		return false
	}
	_, ok := m.Type.(Record)
	return ok
}

// SetOffset records the byte offset and, for bitfields, the bit position of
// the member within that byte. constant is false when the member follows a
// member of variable size; offset is then meaningless.
func (m *Member) SetOffset(offset mpa.Limbs, bitPos int, constant bool) {
	m.laidOut = true
	m.hasOffset = constant
	m.offset = offset
	m.bitPos = bitPos
}

// IsPlaced reports whether layout has visited the member.
func (m *Member) IsPlaced() bool { return m.laidOut }

// Offset returns the byte offset and whether it is a compile time constant.
func (m *Member) Offset() (mpa.Limbs, bool) { return m.offset, m.hasOffset }

// BitPos returns the bit position within the byte at Offset. It is zero
// for everything but bitfields.
func (m *Member) BitPos() int { return m.bitPos }

// RecordContent holds the members of a struct or union and, once laid out,
// its size and alignment.
type RecordContent struct {
	Members []*Member

	laidOut      bool
	sizeConstant bool
	size         mpa.Limbs
	align        int
}

// SetLayout stores the result of laying out the record. size is ignored
// unless sizeConstant holds.
func (c *RecordContent) SetLayout(size mpa.Limbs, sizeConstant bool, align int) {
	c.laidOut = true
	c.sizeConstant = sizeConstant
	if sizeConstant {
		c.size = size
	} else {
		c.size = mpa.Limbs{}
	}
	c.align = align
}

// IsLaidOut reports whether SetLayout was called.
func (c *RecordContent) IsLaidOut() bool { return c.laidOut }

// IsSizeConstant reports whether the record has a constant size.
func (c *RecordContent) IsSizeConstant() bool { return c.sizeConstant }

// Size returns the size in bytes. Valid only for a laid out record of
// constant size.
func (c *RecordContent) Size() mpa.Limbs { return c.size }

// Alignment returns the alignment as log2 bytes.
func (c *RecordContent) Alignment() int { return c.align }

// Lookup finds a member by name, descending into anonymous struct and union
// members. The returned path starts at a member of c and ends at the member
// found.
func (c *RecordContent) Lookup(name string) ([]*Member, bool) {
	if name == "" {
		return nil, false
	}
	for _, m := range c.Members {
		if m.Name == name {
			return []*Member{m}, true
		}
		if !m.IsAnonymousRecord() {
			continue
		}
		inner := m.Type.(Record).Content
		if inner == nil {
			continue
		}
		if path, ok := inner.Lookup(name); ok {
			return append([]*Member{m}, path...), true
		}
	}
	return nil, false
}

// OffsetOf returns the byte offset of the named member relative to the start
// of the record, summing offsets along anonymous members, plus its bit
// position. ok is false if the member is missing or any offset along the
// path is not constant.
func (c *RecordContent) OffsetOf(name string) (offset mpa.Limbs, bitPos int, ok bool) {
	path, found := c.Lookup(name)
	if !found {
		return mpa.Limbs{}, 0, false
	}
	offset = mpa.Zero(1)
	for _, m := range path {
		off, constant := m.Offset()
		if !constant {
			return mpa.Limbs{}, 0, false
		}
		offset = offset.Add(off).Trim()
		bitPos = m.BitPos()
	}
	return offset, bitPos, true
}

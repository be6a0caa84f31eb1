package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"ccabi/internal/layout"
	"ccabi/internal/types"
)

// CheckRecordInvariants runs the structural checks every laid out record
// must pass:
// 1) the content is laid out and a constant size is a multiple of the alignment
// 2) every member is placed, at offset 0 in a union
// 3) struct members with constant offsets are in declaration order and
// aligned to their effective alignment, capped by opts
// 4) every constant size member ends within the record
func CheckRecordInvariants(t layout.Target, c *types.RecordContent, union bool, attrs layout.RecordAttrs, opts layout.Options) error {
	if c == nil {
		return fmt.Errorf("nil content")
	}

	// 1) size and alignment
	if !c.IsLaidOut() {
		return fmt.Errorf("content not laid out")
	}
	align := c.Alignment()
	if align < 0 {
		return fmt.Errorf("negative alignment %d", align)
	}
	var sizeBits uint64
	if c.IsSizeConstant() {
		size, err := c.Size().Uint64()
		if err != nil {
			return fmt.Errorf("size overflow: %w", err)
		}
		if size%(uint64(1)<<align) != 0 {
			return fmt.Errorf("size %d is not a multiple of alignment %d", size, uint64(1)<<align)
		}
		sizeBits = size * 8
	}

	capLog2, capped := opts.MaxFieldAlign.Log2()
	var prevEnd uint64
	for i, m := range c.Members {
		// 2) placement
		if !m.IsPlaced() {
			return fmt.Errorf("member %d (%s) not placed", i, m.Name)
		}
		off, constant := m.Offset()
		if !constant {
			continue
		}
		offset, err := off.Uint64()
		if err != nil {
			return fmt.Errorf("member %d offset overflow: %w", i, err)
		}
		bitPos, err := safecast.Conv[uint64](m.BitPos())
		if err != nil {
			return fmt.Errorf("member %d bit position: %w", i, err)
		}
		if bitPos >= 8 {
			return fmt.Errorf("member %d bit position %d not normalized", i, bitPos)
		}
		start := offset*8 + bitPos
		if union && start != 0 {
			return fmt.Errorf("union member %d at bit %d", i, start)
		}

		var bits uint64
		var sized bool
		switch mt := layout.MemberType(t, m, attrs.Packed).(type) {
		case *types.Bitfield:
			bits, err = safecast.Conv[uint64](mt.Width)
			if err != nil {
				return fmt.Errorf("member %d width: %w", i, err)
			}
			sized = true
		case types.ObjectType:
			// 3) alignment
			want := types.EffectiveAlignment(mt, t)
			if capped {
				want = min(want, capLog2)
			}
			if bitPos != 0 || offset%(uint64(1)<<want) != 0 {
				return fmt.Errorf("member %d (%s) at %d.%d not aligned to %d", i, m.Name, offset, bitPos, uint64(1)<<want)
			}
			if mt.IsComplete() && mt.IsSizeConstant() {
				size, err := mt.Size(t).Uint64()
				if err != nil {
					return fmt.Errorf("member %d size overflow: %w", i, err)
				}
				bits = size * 8
				sized = true
			}
		}

		// 3) order
		if !union && start < prevEnd && bits != 0 {
			return fmt.Errorf("member %d (%s) at bit %d overlaps previous member ending at %d", i, m.Name, start, prevEnd)
		}
		if sized {
			prevEnd = max(prevEnd, start+bits)
		}

		// 4) containment
		if sized && c.IsSizeConstant() && start+bits > sizeBits {
			return fmt.Errorf("member %d (%s) ends at bit %d beyond size %d", i, m.Name, start+bits, sizeBits)
		}
	}
	return nil
}

package layout

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"ccabi/internal/mpa"
	"ccabi/internal/trace"
	"ccabi/internal/types"
)

// byteFfs is the ffs value of a one byte alignment.
const byteFfs = 3 + 1

// recordLayout is the running state of one struct or union layout, after
// gcc's record_layout_info.
type recordLayout struct {
	abi types.ABI

	offset       mpa.Limbs // bytes
	bitpos       mpa.Limbs // bits past offset
	recordAlign  int       // ffs of the alignment in bits
	sizeConstant bool
	maxFieldFfs  int // 0 if uncapped

	tracer trace.Tracer
	parent uint64
}

func newRecordLayout(abi types.ABI, attrs RecordAttrs, opts Options) *recordLayout {
	userFfs := attrs.Aligned.Ffs()
	r := &recordLayout{
		abi:          abi,
		offset:       mpa.Zero(1),
		bitpos:       mpa.Zero(1),
		recordAlign:  max(byteFfs, userFfs+3),
		sizeConstant: true,
		tracer:       trace.Nop,
	}
	if log2, ok := opts.MaxFieldAlign.Log2(); ok {
		r.maxFieldFfs = 3 + log2 + 1
	}
	return r
}

func (r *recordLayout) capField(ffs int) int {
	if r.maxFieldFfs != 0 && ffs > r.maxFieldFfs {
		return r.maxFieldFfs
	}
	return ffs
}

func (r *recordLayout) objectAlignFfs(t types.ObjectType) int {
	return 3 + types.EffectiveAlignment(t, r.abi) + 1
}

// layoutDeclField returns the desired alignment of an ordinary member. The
// effective alignment already includes packed and aligned attributes.
func (r *recordLayout) layoutDeclField(t types.ObjectType) int {
	return r.capField(r.objectAlignFfs(t))
}

// layoutDeclBitfield returns the desired alignment of a bitfield. A
// bitfield starts out bit aligned; a zero-width one aligns the next member
// to its base type regardless of packing.
func (r *recordLayout) layoutDeclBitfield(bf *types.Bitfield) int {
	desired := 1
	if log2, ok := bf.Align.Log2(); ok {
		desired = 3 + log2 + 1
	}
	if bf.Width == 0 {
		desired = max(desired, r.objectAlignFfs(bf.Base))
	}
	return r.capField(desired)
}

func (r *recordLayout) updateAlignmentForField(t types.ObjectType) int {
	desired := r.layoutDeclField(t)
	r.recordAlign = max(r.recordAlign, desired)
	return desired
}

// updateAlignmentForBitfield raises the record alignment to the bitfield's
// type alignment. Only named bitfields do so; zero-width bitfields are
// always unnamed and never affect the record alignment.
func (r *recordLayout) updateAlignmentForBitfield(name string, bf *types.Bitfield) int {
	desired := r.layoutDeclBitfield(bf)
	if name == "" {
		return desired
	}
	typeAlign := r.objectAlignFfs(bf.Base)
	switch {
	case r.maxFieldFfs != 0:
		typeAlign = min(typeAlign, r.maxFieldFfs)
	case bf.Width != 0 && bf.Packed:
		typeAlign = byteFfs
	}
	r.recordAlign = max(r.recordAlign, desired, typeAlign)
	return desired
}

// normalize moves whole bytes from bitpos into offset.
func (r *recordLayout) normalize() {
	if !r.bitpos.IsAnySetAtOrAbove(3) {
		return
	}
	r.offset = r.offset.Add(r.bitpos.Rsh(3, false)).Trim()
	r.bitpos = r.bitpos.SetBitsAtAndAbove(3, false).Resize(1)
}

// alignToByte rounds a partial byte up.
func (r *recordLayout) alignToByte() {
	if r.bitpos.IsZero() {
		return
	}
	r.offset = r.offset.Add(r.bitpos.Align(3).Rsh(3, false)).Trim()
	r.bitpos = mpa.Zero(1)
}

// alignBitPosition rounds the absolute bit position up to a multiple of
// 1<<log2, log2 being at least 3. offset is kept in whole bytes, so the
// rounding has to see offset and bitpos together.
func (r *recordLayout) alignBitPosition(log2 int) {
	pos := r.offset.Resize(r.offset.Len() + 1).Lsh(3).Add(r.bitpos).Align(log2)
	r.offset = pos.Rsh(3, false).Trim()
	r.bitpos = mpa.Zero(1)
}

// excessUnitSpan reports whether a bitfield of size bits starting at the
// given position would span more units of alignment of its type than the
// type itself has. Arithmetic wraps at 64 bits like gcc's HOST_WIDE_INT.
func excessUnitSpan(byteOffset, bitOffset, size uint64, alignLog2 int, typeSize uint64) bool {
	offset := byteOffset*8 + bitOffset
	align := uint64(1) << alignLog2
	offset %= align
	return (offset+size+align-1)/align > typeSize/align
}

// pccAdjust advances to the next boundary of the bitfield's type
// alignment if the bitfield would otherwise straddle one more unit than its
// type has. The check is skipped for packed bitfields, for zero widths,
// after a member of variable size, when a field alignment cap is in effect
// and when the values do not fit 64 bits.
func (r *recordLayout) pccAdjust(bf *types.Bitfield) {
	if bf.Packed || bf.Width == 0 || !r.sizeConstant || r.maxFieldFfs != 0 {
		return
	}
	baseSize := bf.Base.Size(r.abi)
	if !r.offset.FitsInto(64) || !baseSize.FitsInto(64-3) {
		return
	}
	typeAlign := r.objectAlignFfs(bf.Base)
	if excessUnitSpan(r.offset.MustUint64(), r.bitpos.MustUint64(), bitWidth(bf.Width), typeAlign-1, baseSize.MustUint64()*8) {
		r.alignBitPosition(typeAlign - 1)
	}
}

func (r *recordLayout) placeStructField(idx int, m *types.Member, mt types.MemberType) {
	var desired int
	switch t := mt.(type) {
	case *types.Bitfield:
		desired = r.updateAlignmentForBitfield(m.Name, t)
	case types.ObjectType:
		desired = r.updateAlignmentForField(t)
	default:
		panic(fmt.Errorf("layout: member %q has unexpected type %T", m.Name, mt))
	}

	if desired != 1 && desired < byteFfs {
		panic(fmt.Errorf("layout: member %q has sub-byte alignment ffs %d", m.Name, desired))
	}
	if desired >= byteFfs {
		r.alignToByte()
		r.offset = r.offset.Align(desired - 1 - 3).Trim()
	}

	if bf, ok := mt.(*types.Bitfield); ok {
		r.pccAdjust(bf)
	}

	r.normalize()
	bitpos := int(r.bitpos.Limb(0)) //nolint:gosec // G115: below 8 after normalize.
	m.SetOffset(r.offset, bitpos, r.sizeConstant)
	r.tracePlacement(idx, m, desired)

	switch t := mt.(type) {
	case *types.Bitfield:
		r.bitpos = r.bitpos.Add(mpa.FromUint64(bitWidth(t.Width)))
		r.normalize()
	case types.ObjectType:
		switch {
		case !t.IsComplete():
			// A trailing flexible array member takes no space.
		case !t.IsSizeConstant():
			if !r.bitpos.IsZero() {
				panic(fmt.Errorf("layout: variable size member %q not byte aligned", m.Name))
			}
			r.sizeConstant = false
		default:
			size := t.Size(r.abi)
			r.bitpos = r.bitpos.Add(size.Resize(size.Len() + 1).Lsh(3)).Trim()
			r.normalize()
		}
	}
}

func (r *recordLayout) placeUnionField(idx int, m *types.Member, mt types.MemberType) {
	var size mpa.Limbs
	switch t := mt.(type) {
	case *types.Bitfield:
		r.updateAlignmentForBitfield(m.Name, t)
		size = mpa.FromUint64(bitWidth(t.Width)).Align(3).Rsh(3, false)
	case types.ObjectType:
		r.updateAlignmentForField(t)
		if t.IsSizeConstant() {
			size = t.Size(r.abi)
		} else {
			r.sizeConstant = false
		}
	default:
		panic(fmt.Errorf("layout: member %q has unexpected type %T", m.Name, mt))
	}

	m.SetOffset(mpa.Zero(1), 0, true)
	r.tracePlacement(idx, m, 0)

	if r.offset.Less(size) {
		r.offset = size.Trim()
	}
}

// finish stores size and alignment. The size is the unpadded bit size
// rounded up to the record alignment.
func (r *recordLayout) finish(c *types.RecordContent) {
	r.normalize()

	unpadded := r.offset.Resize(r.offset.Len() + 1).Lsh(3).Add(r.bitpos)
	size := unpadded.Align(r.recordAlign - 1)
	if size.IsAnySetBelow(3) {
		panic(fmt.Errorf("layout: record size %s bits is not a whole number of bytes", size))
	}
	c.SetLayout(size.Rsh(3, false).Trim(), r.sizeConstant, r.recordAlign-1-3)
}

func (r *recordLayout) tracePlacement(idx int, m *types.Member, desired int) {
	if !r.tracer.Enabled() {
		return
	}
	name := m.Name
	if name == "" {
		name = "#" + strconv.Itoa(idx)
	}
	offset, constant := m.Offset()
	extra := map[string]string{
		"offset": offset.String(),
		"bitpos": strconv.Itoa(m.BitPos()),
	}
	if !constant {
		extra["offset"] = "variable"
	}
	if desired > 0 {
		extra["align_ffs"] = strconv.Itoa(desired)
	}
	trace.Point(r.tracer, trace.ScopeMember, "member "+name, m.Type.String(), r.parent, extra)
}

// bitWidth converts a bit count that is known to be non-negative.
func bitWidth(w int) uint64 {
	n, err := safecast.Conv[uint64](w)
	if err != nil {
		panic(fmt.Errorf("layout: bit width %d: %w", w, err))
	}
	return n
}

package layout

import "ccabi/internal/types"

// MemberType returns the type a member is laid out with: its declared type
// adjusted for the member's packed and aligned attributes and the packed
// attribute of the enclosing record.
//
// An object member gets the requested alignment if it is packed or the
// request raises its alignment; a packed member without a request gets
// byte alignment. A bitfield records the packed flag and any requested
// alignment as is.
func MemberType(abi types.ABI, m *types.Member, recordPacked bool) types.MemberType {
	packed := recordPacked || m.Packed
	switch t := m.Type.(type) {
	case *types.Bitfield:
		bf := *t
		if packed {
			bf.Packed = true
		}
		if m.Aligned.IsSet() {
			bf.Align = m.Aligned
		}
		return &bf
	case types.ObjectType:
		if log2, ok := m.Aligned.Log2(); ok && (packed || types.EffectiveAlignment(t, abi) < log2) {
			return t.WithUserAlignment(m.Aligned)
		}
		if packed {
			return t.WithUserAlignment(types.AlignLog2(0))
		}
		return t
	default:
		return m.Type
	}
}

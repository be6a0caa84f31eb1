package testkit

import (
	"ccabi/internal/mpa"
	"ccabi/internal/types"
)

// Field returns an ordinary member.
func Field(name string, t types.ObjectType) *types.Member {
	return &types.Member{Name: name, Type: t}
}

// Bits returns a bitfield member.
func Bits(name string, base types.IntegerType, width int) *types.Member {
	return &types.Member{Name: name, Type: &types.Bitfield{Base: base, Width: width}}
}

// Content returns a record content holding ms.
func Content(ms ...*types.Member) *types.RecordContent {
	return &types.RecordContent{Members: ms}
}

// Arr returns T[n].
func Arr(elem types.ObjectType, n uint64) types.Array {
	return types.ArrayOf(elem, mpa.FromUint64(n))
}

// Common x86_64 member types.
var (
	Char   = types.Int{IntKind: types.IntChar, Signed: true}
	UChar  = types.Int{IntKind: types.IntChar}
	Short  = types.Int{IntKind: types.IntShort, Signed: true}
	Int    = types.SignedInt
	UInt   = types.UnsignedInt
	Long   = types.SignedLong
	LLong  = types.Int{IntKind: types.IntLongLong, Signed: true}
	Int128 = types.Int{IntKind: types.IntInt128, Signed: true}
	Double = types.Float{FloatKind: types.FloatDouble}
	LDbl   = types.Float{FloatKind: types.FloatLongDouble}
	VoidP  = types.Pointer{Target: types.Void{}}
)

// Package arch describes target architectures: the sizes, alignments and
// signedness of the C types and the struct, union and enum layout rules of
// the compiler being matched.
package arch

import (
	"context"

	"ccabi/internal/diag"
	"ccabi/internal/layout"
	"ccabi/internal/types"
)

// Architecture is the capability contract of a target.
type Architecture interface {
	layout.Target

	// Triple is the canonical target triple.
	Triple() string

	IsWcharSigned() bool
	IsBitfieldDefaultSigned() bool

	FloatSignificandWidth(k types.FloatKind) int
	FloatExponentWidth(k types.FloatKind) int

	PointerMode() IntMode
	WordMode() IntMode
	// BiggestAlignment is the log2 of the largest alignment in bytes any
	// type needs, the alignment of __attribute__((aligned)).
	BiggestAlignment() int

	IntModeToKind(m IntMode) (types.IntKind, error)
	FloatModeToKind(m FloatMode) (types.FloatKind, error)

	VaListSize() uint64
	VaListAlignment() int
	// VaListType returns the type of __builtin_va_list. It is built once
	// and shared.
	VaListType() types.ObjectType

	WintKind() types.IntKind
	IsWintSigned() bool
	IntmaxKind() types.IntKind
	PidKind() types.IntKind
	IsPidSigned() bool

	LayoutStruct(ctx context.Context, c *types.RecordContent, attrs layout.RecordAttrs) error
	LayoutUnion(ctx context.Context, c *types.RecordContent, attrs layout.RecordAttrs) error
	EvaluateEnumType(ctx context.Context, r diag.Reporter, c *types.EnumContent, attrs layout.EnumAttrs) error
}

// Config holds command line options that change the layout rules.
type Config struct {
	// PackStruct is the -fpack-struct=N cap on member alignment.
	PackStruct types.Alignment
}

package arch

import (
	"context"
	"fmt"
	"sync"

	"ccabi/internal/diag"
	"ccabi/internal/layout"
	"ccabi/internal/mpa"
	"ccabi/internal/types"
)

// X86_64GCC48 is x86_64 Linux as compiled by gcc 4.8 (LP64, System V ABI).
type X86_64GCC48 struct {
	cfg Config

	vaListOnce sync.Once
	vaList     types.ObjectType
}

// NewX86_64GCC48 returns the x86_64 gcc 4.8 target.
func NewX86_64GCC48(cfg Config) *X86_64GCC48 {
	return &X86_64GCC48{cfg: cfg}
}

var _ Architecture = (*X86_64GCC48)(nil)

func (*X86_64GCC48) Triple() string { return "x86_64-linux-gnu" }

func (*X86_64GCC48) IsCharSigned() bool            { return true }
func (*X86_64GCC48) IsWcharSigned() bool           { return true }
func (*X86_64GCC48) IsBitfieldDefaultSigned() bool { return true }

func (*X86_64GCC48) IntWidth(k types.IntKind) int {
	switch k {
	case types.IntChar:
		return 8
	case types.IntShort:
		return 16
	case types.IntInt:
		return 32
	case types.IntLong, types.IntLongLong:
		return 64
	case types.IntInt128:
		return 128
	default:
		panic(fmt.Errorf("arch: unknown integer kind %s", k))
	}
}

func (a *X86_64GCC48) IntSize(k types.IntKind) mpa.Limbs {
	return mpa.FromUint64(uint64(a.IntWidth(k) / 8)) //nolint:gosec // G115: widths are small positive constants.
}

func (a *X86_64GCC48) IntAlignment(k types.IntKind) int {
	return a.IntSize(k).Ffs() - 1
}

// IntKindForWidth maps the widths an enum or a mode can ask for to the
// standard kind of that width, preferring long over long long.
func (*X86_64GCC48) IntKindForWidth(width int) (types.IntKind, bool) {
	switch width {
	case 8:
		return types.IntChar, true
	case 16:
		return types.IntShort, true
	case 32:
		return types.IntInt, true
	case 64:
		return types.IntLong, true
	case 128:
		return types.IntInt128, true
	default:
		return 0, false
	}
}

func (*X86_64GCC48) FloatSignificandWidth(k types.FloatKind) int {
	switch k {
	case types.FloatFloat:
		return 24
	case types.FloatDouble:
		return 53
	case types.FloatLongDouble:
		return 113
	default:
		panic(fmt.Errorf("arch: unknown float kind %s", k))
	}
}

func (*X86_64GCC48) FloatExponentWidth(k types.FloatKind) int {
	switch k {
	case types.FloatFloat:
		return 8
	case types.FloatDouble:
		return 11
	case types.FloatLongDouble:
		return 15
	default:
		panic(fmt.Errorf("arch: unknown float kind %s", k))
	}
}

func (*X86_64GCC48) FloatSize(k types.FloatKind, complex bool) mpa.Limbs {
	var size uint64
	switch k {
	case types.FloatFloat:
		size = 4
	case types.FloatDouble:
		size = 8
	case types.FloatLongDouble:
		size = 16
	default:
		panic(fmt.Errorf("arch: unknown float kind %s", k))
	}
	if complex {
		size <<= 1
	}
	return mpa.FromUint64(size)
}

// FloatAlignment is the alignment of the real type, complex or not.
func (a *X86_64GCC48) FloatAlignment(k types.FloatKind, _ bool) int {
	return a.FloatSize(k, false).Ffs() - 1
}

func (*X86_64GCC48) PointerSize() mpa.Limbs { return mpa.FromUint64(8) }
func (*X86_64GCC48) PointerAlignment() int  { return 3 }
func (*X86_64GCC48) PointerMode() IntMode   { return ModeDI }
func (*X86_64GCC48) WordMode() IntMode      { return ModeDI }
func (*X86_64GCC48) BiggestAlignment() int  { return 4 }

func (a *X86_64GCC48) IntModeToKind(m IntMode) (types.IntKind, error) {
	if k, ok := a.IntKindForWidth(m.Width()); ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedMode, m)
}

// FloatModeToKind maps SF, DF and the x87 XF mode. TF, the IEEE quad
// mode, has no standard C type on this target.
func (*X86_64GCC48) FloatModeToKind(m FloatMode) (types.FloatKind, error) {
	switch m {
	case ModeSF:
		return types.FloatFloat, nil
	case ModeDF:
		return types.FloatDouble, nil
	case ModeXF:
		return types.FloatLongDouble, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedMode, m)
	}
}

func (*X86_64GCC48) VaListSize() uint64   { return 24 }
func (*X86_64GCC48) VaListAlignment() int { return 3 }

// VaListType returns struct __va_list_tag[1].
func (a *X86_64GCC48) VaListType() types.ObjectType {
	a.vaListOnce.Do(func() {
		voidPtr := types.Pointer{Target: types.Void{}}
		c := &types.RecordContent{Members: []*types.Member{
			{Name: "gp_offset", Type: types.UnsignedInt},
			{Name: "fp_offset", Type: types.UnsignedInt},
			{Name: "overflow_arg_area", Type: voidPtr},
			{Name: "reg_save_area", Type: voidPtr},
		}}
		if err := layout.LayoutStruct(context.Background(), a, c, layout.RecordAttrs{}, layout.Options{}); err != nil {
			panic(fmt.Errorf("arch: laying out __va_list_tag: %w", err))
		}
		tag := types.Record{Tag: "__va_list_tag", Content: c}
		a.vaList = types.ArrayOf(tag, mpa.FromUint64(1))
	})
	return a.vaList
}

func (*X86_64GCC48) WintKind() types.IntKind   { return types.IntInt }
func (*X86_64GCC48) IsWintSigned() bool        { return true }
func (*X86_64GCC48) IntmaxKind() types.IntKind { return types.IntLong }
func (*X86_64GCC48) PidKind() types.IntKind    { return types.IntInt }
func (*X86_64GCC48) IsPidSigned() bool         { return true }

func (a *X86_64GCC48) options() layout.Options {
	return layout.Options{MaxFieldAlign: a.cfg.PackStruct}
}

func (a *X86_64GCC48) LayoutStruct(ctx context.Context, c *types.RecordContent, attrs layout.RecordAttrs) error {
	return layout.LayoutStruct(ctx, a, c, attrs, a.options())
}

func (a *X86_64GCC48) LayoutUnion(ctx context.Context, c *types.RecordContent, attrs layout.RecordAttrs) error {
	return layout.LayoutUnion(ctx, a, c, attrs, a.options())
}

func (a *X86_64GCC48) EvaluateEnumType(ctx context.Context, r diag.Reporter, c *types.EnumContent, attrs layout.EnumAttrs) error {
	return layout.EvaluateEnumType(ctx, a, r, c, attrs)
}

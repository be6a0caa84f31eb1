package layout

import (
	"context"
	"fmt"
	"math/bits"

	"ccabi/internal/diag"
	"ccabi/internal/trace"
	"ccabi/internal/types"
)

// maxEnumWidth is the widest underlying type an enum may get.
const maxEnumWidth = 64

// EnumAttrs are the attributes attached to an enum definition.
type EnumAttrs struct {
	Packed bool
	// ModeWidth is the width of an explicit mode attribute, 0 if none.
	ModeWidth int
	Aligned   types.Alignment
}

// EvaluateEnumType picks the underlying integer type of c and the type and
// converted value of every enumerator.
//
// An enumerator that fits no integer type, or not the explicit mode, is
// reported as a fatal diagnostic through r; the returned *EnumError
// carries the same code and c is left unmodified.
func EvaluateEnumType(ctx context.Context, t Target, r diag.Reporter, c *types.EnumContent, attrs EnumAttrs) error {
	if c == nil {
		panic("layout: nil enum content")
	}
	if c.IsEvaluated() {
		panic("layout: enum content already evaluated")
	}

	anyNeg := false
	minPrec := 0
	for _, m := range c.Members {
		neg := m.Value.IsNegative()
		anyNeg = anyNeg || neg
		minPrec = max(minPrec, m.Value.MinRequiredWidth()-b2i(neg))

		need := minPrec + b2i(anyNeg)
		switch {
		case need > maxEnumWidth:
			return enumFatal(r, diag.EnumValueOutOfBounds, m, "enumerator value out of bounds")
		case attrs.ModeWidth != 0 && need > attrs.ModeWidth:
			return enumFatal(r, diag.EnumValueExceedsMode, m, "enumerator value exceeds specified integer mode")
		}
	}

	width := attrs.ModeWidth
	if width == 0 {
		width = enumWidth(minPrec+b2i(anyNeg), attrs.Packed)
	}
	kind, ok := t.IntKindForWidth(width)
	if !ok {
		panic(fmt.Errorf("layout: no integer type of width %d", width))
	}
	underlying := types.Int{IntKind: kind, Signed: width <= 16 || anyNeg}
	if alignmentCovers(attrs.Aligned, width) {
		underlying.Align = attrs.Aligned
	}

	for _, m := range c.Members {
		mt := memberIntType(m.Value.MinRequiredWidth()-b2i(m.Value.IsNegative()), width, anyNeg)
		prec := t.IntWidth(mt.IntKind) - b2i(mt.Signed)
		v, err := m.Value.ConvertTo(prec, mt.Signed)
		if err != nil {
			panic(fmt.Errorf("layout: enumerator %s does not fit %s: %w", m.Name, mt, err))
		}
		m.Value = v
		m.Type = mt
	}
	c.SetUnderlying(underlying)

	trace.Point(trace.FromContext(ctx), trace.ScopeDecl, "enum", underlying.String(), trace.CurrentSpan(ctx), map[string]string{
		"members": fmt.Sprint(len(c.Members)),
	})
	return nil
}

// alignmentCovers reports whether a spans at least width bits. The
// comparison is in log2 units so that huge alignments do not wrap.
func alignmentCovers(a types.Alignment, width int) bool {
	log2, ok := a.Log2()
	return ok && log2+3 >= bits.Len64(bitWidth(width))-1
}

// enumWidth is the smallest candidate width holding need bits.
func enumWidth(need int, packed bool) int {
	candidates := []int{32, 64}
	if packed {
		candidates = []int{8, 16, 32, 64}
	}
	for _, w := range candidates {
		if need <= w {
			return w
		}
	}
	return maxEnumWidth
}

// memberIntType is the type of an enumerator constant with precision prec
// in an enum whose underlying type has the given width.
func memberIntType(prec, width int, anyNeg bool) types.Int {
	switch {
	case prec < 32:
		return types.SignedInt
	case width <= 32 && !anyNeg:
		return types.UnsignedInt
	case anyNeg:
		return types.SignedLong
	default:
		return types.UnsignedLong
	}
}

func enumFatal(r diag.Reporter, code diag.Code, m *types.EnumMember, msg string) error {
	diag.ReportFatal(r, code, m.Span, fmt.Sprintf("%s: %s = %s", msg, m.Name, m.Value)).Emit()
	return &EnumError{Code: code, Enumerator: m.Name, Span: m.Span}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

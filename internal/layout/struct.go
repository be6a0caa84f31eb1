package layout

import (
	"context"
	"fmt"

	"ccabi/internal/trace"
	"ccabi/internal/types"
)

// LayoutStruct assigns offsets to the members of c and stores its size and
// alignment, following the gcc 4.8 record layout. A constraint violation in
// the members is returned as a *LayoutError and leaves c unmodified.
func LayoutStruct(ctx context.Context, t Target, c *types.RecordContent, attrs RecordAttrs, opts Options) error {
	return layoutRecord(ctx, t, c, false, attrs, opts)
}

// LayoutUnion is LayoutStruct for unions: every member is at offset 0 and
// the size is that of the largest member.
func LayoutUnion(ctx context.Context, t Target, c *types.RecordContent, attrs RecordAttrs, opts Options) error {
	return layoutRecord(ctx, t, c, true, attrs, opts)
}

func layoutRecord(ctx context.Context, t Target, c *types.RecordContent, union bool, attrs RecordAttrs, opts Options) error {
	if c == nil {
		panic("layout: nil record content")
	}
	if c.IsLaidOut() {
		panic("layout: record content already laid out")
	}
	if err := validateMembers(t, c, union); err != nil {
		return err
	}

	kind := "struct"
	if union {
		kind = "union"
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDecl, "layout "+kind, trace.CurrentSpan(ctx))

	r := newRecordLayout(t, attrs, opts)
	r.tracer = tracer
	r.parent = span.ID()
	for i, m := range c.Members {
		mt := MemberType(t, m, attrs.Packed)
		if union {
			r.placeUnionField(i, m, mt)
		} else {
			r.placeStructField(i, m, mt)
		}
	}
	r.finish(c)

	detail := fmt.Sprintf("align=%d", c.Alignment())
	if c.IsSizeConstant() {
		detail = fmt.Sprintf("size=%s %s", c.Size(), detail)
	}
	span.End(detail)
	return nil
}

// validateMembers checks the constraints the layout relies on. A struct may
// end in an array of unknown length; every other member must be complete.
func validateMembers(t Target, c *types.RecordContent, union bool) error {
	last := len(c.Members) - 1
	for i, m := range c.Members {
		fail := func(kind LayoutErrorKind, detail string) error {
			return &LayoutError{Kind: kind, Member: m.Name, Index: i, Span: m.Span, Detail: detail}
		}
		switch mt := m.Type.(type) {
		case *types.Bitfield:
			if err := validateBitfield(t, m.Name, mt); err != nil {
				return fail(err.kind, err.detail)
			}
		case types.ObjectType:
			if mt.IsComplete() {
				continue
			}
			if arr, ok := mt.(types.Array); ok && !union && i == last && arr.Elem.IsComplete() {
				continue
			}
			return fail(LayoutErrIncompleteMember, mt.String())
		default:
			return fail(LayoutErrIncompleteMember, fmt.Sprintf("%s is not an object type", m.Type))
		}
	}
	return nil
}

type bitfieldProblem struct {
	kind   LayoutErrorKind
	detail string
}

func validateBitfield(t Target, name string, bf *types.Bitfield) *bitfieldProblem {
	switch base := bf.Base.(type) {
	case types.Bool, types.PlainChar, types.Int:
	case types.Enum:
		if !base.IsComplete() {
			return &bitfieldProblem{LayoutErrBitfieldBase, "incomplete enum " + base.String()}
		}
	default:
		return &bitfieldProblem{LayoutErrBitfieldBase, fmt.Sprintf("%v", bf.Base)}
	}
	if bf.Width < 0 {
		return &bitfieldProblem{LayoutErrBitfieldWidth, fmt.Sprintf("negative width %d", bf.Width)}
	}
	if w := bf.Base.Width(t); bf.Width > w {
		return &bitfieldProblem{LayoutErrBitfieldWidth, fmt.Sprintf("%d > %d", bf.Width, w)}
	}
	if bf.Width == 0 && name != "" {
		return &bitfieldProblem{LayoutErrNamedZeroWidth, ""}
	}
	return nil
}

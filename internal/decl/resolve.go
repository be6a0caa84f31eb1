package decl

import (
	"ccabi/internal/arch"
	"ccabi/internal/diag"
	"ccabi/internal/source"
	"ccabi/internal/types"
)

// resolve turns a parsed type into a type. A tag used by value is
// evaluated first; behind a pointer it is only looked up and may be
// undeclared.
func (l *loader) resolve(te typeExpr, sp source.Span) (types.Type, bool) {
	var t types.Type
	switch te.base {
	case baseVoid:
		t = types.Void{}
	case baseBool:
		t = types.Bool{}
	case baseFloat:
		t = types.Float{FloatKind: te.floatKind, Complex: te.complex}
	case baseInt:
		if te.plainChar {
			t = types.PlainChar{}
		} else {
			t = types.Int{IntKind: te.intKind, Signed: te.signed}
		}
	case baseTag:
		var ok bool
		if t, ok = l.resolveTag(te, sp); !ok {
			return nil, false
		}
	}

	for range te.pointers {
		t = types.Pointer{Target: t}
	}
	for i := len(te.dims) - 1; i >= 0; i-- {
		elem, ok := t.(types.ObjectType)
		if !ok || !elem.IsComplete() || !elem.IsSizeConstant() {
			l.errorf(diag.DeclIncompleteMember, sp, "array has incomplete element type %s", t)
			return nil, false
		}
		if te.dims[i].hasLength {
			t = types.ArrayOf(elem, te.dims[i].length)
		} else {
			t = types.IncompleteArrayOf(elem)
		}
	}
	return t, true
}

func (l *loader) resolveTag(te typeExpr, sp source.Span) (types.Type, bool) {
	byValue := te.pointers == 0
	d, ok := l.tags[te.tag]
	switch {
	case !ok && byValue:
		l.errorf(diag.DeclUnknownTag, sp, "%s %s is not declared", te.tagKind, te.tag)
		return nil, false
	case !ok:
		if te.tagKind == KindEnum {
			return types.Enum{Tag: te.tag}, true
		}
		return types.Record{Union: te.tagKind == KindUnion, Tag: te.tag}, true
	case d.Kind != te.tagKind:
		diag.ReportError(l.r, diag.DeclBadType, sp, "'"+te.tag+"' defined as wrong kind of tag").
			WithNote(d.Span, d.Kind.String()+" "+d.Name+" is defined here").Emit()
		return nil, false
	}
	if byValue {
		l.evaluate(d)
		if d.Failed {
			diag.ReportError(l.r, diag.DeclIncompleteMember, sp, d.Kind.String()+" "+d.Name+" could not be laid out").
				WithNote(d.Span, "declared here").Emit()
			return nil, false
		}
	}
	return d.Type, true
}

// applyMode implements __attribute__((mode)) on an ordinary member.
func (l *loader) applyMode(t types.ObjectType, mode string, sp source.Span) (types.ObjectType, bool) {
	im, fm, err := arch.ParseMode(l.arch, mode)
	if err != nil {
		l.errorf(diag.DeclBadMode, sp, "%v", err)
		return nil, false
	}
	switch o := t.(type) {
	case types.Int, types.PlainChar:
		if im == arch.ModeNone {
			break
		}
		k, err := l.arch.IntModeToKind(im)
		if err != nil {
			l.errorf(diag.DeclBadMode, sp, "%v", err)
			return nil, false
		}
		if i, isInt := o.(types.Int); isInt {
			i.IntKind = k
			return i, true
		}
		return types.Int{IntKind: k, Signed: l.arch.IsCharSigned(), Align: o.UserAlignment()}, true
	case types.Float:
		if fm == arch.FloatModeNone {
			break
		}
		k, err := l.arch.FloatModeToKind(fm)
		if err != nil {
			l.errorf(diag.DeclBadMode, sp, "%v", err)
			return nil, false
		}
		o.FloatKind = k
		return o, true
	}
	l.errorf(diag.DeclBadMode, sp, "invalid mode %q for type %s", mode, t)
	return nil, false
}

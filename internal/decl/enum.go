package decl

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"ccabi/internal/arch"
	"ccabi/internal/diag"
	"ccabi/internal/layout"
	"ccabi/internal/source"
	"ccabi/internal/targetint"
	"ccabi/internal/types"
)

// valuePrec is the precision enumerator values are read at, that of
// __int128. Values needing more than 64 bits are rejected by the enum
// evaluation with a proper diagnostic.
const valuePrec = 127

func (l *loader) evaluateEnum(d *Decl) {
	doc := d.enum
	aligned, ok := l.alignment(doc.Aligned, d.Span)
	attrs := layout.EnumAttrs{Packed: doc.Packed, Aligned: aligned}
	if doc.Mode != "" {
		if width, good := l.enumMode(doc.Mode, d.Span); good {
			attrs.ModeWidth = width
		} else {
			ok = false
		}
	}
	d.EnumAttrs = attrs

	if len(doc.Values) == 0 {
		l.errorf(diag.DeclBadValue, d.Span, "enum %s has no enumerators", d.Name)
		ok = false
	}

	var prev targetint.TargetInt
	havePrev := false
	for i, vs := range doc.Values {
		sp := d.spans[i]
		name := norm.NFC.String(strings.TrimSpace(vs.Name))
		if !isIdentifier(name) {
			l.errorf(diag.DeclMissingName, sp, "enumerator %q is not an identifier", name)
			ok = false
			continue
		}
		if prevSpan, dup := l.enumerators[name]; dup {
			diag.ReportError(l.r, diag.DeclDuplicateEnumerator, sp, fmt.Sprintf("redeclaration of enumerator %q", name)).
				WithNote(prevSpan, "previous definition is here").Emit()
			ok = false
		} else {
			l.enumerators[name] = sp
		}

		v, good := l.enumValue(name, vs.Value, prev, havePrev, sp)
		if !good {
			ok = false
			continue
		}
		prev, havePrev = v, true
		d.Enum.Members = append(d.Enum.Members, &types.EnumMember{Name: name, Value: v, Span: sp})
	}
	if !ok {
		d.Failed = true
		return
	}
	if err := l.arch.EvaluateEnumType(l.ctx, l.r, d.Enum, attrs); err != nil {
		d.Failed = true
	}
}

func (l *loader) enumMode(mode string, sp source.Span) (int, bool) {
	im, _, err := arch.ParseMode(l.arch, mode)
	if err == nil && im == arch.ModeNone {
		err = fmt.Errorf("%w: %q is not an integer mode", arch.ErrUnsupportedMode, mode)
	}
	if err == nil {
		_, err = l.arch.IntModeToKind(im)
	}
	if err != nil {
		l.errorf(diag.DeclBadMode, sp, "%v", err)
		return 0, false
	}
	return im.Width(), true
}

// enumValue reads an enumerator value. Without one the value is the
// previous one plus one, or zero for the first enumerator.
func (l *loader) enumValue(name string, raw any, prev targetint.TargetInt, havePrev bool, sp source.Span) (targetint.TargetInt, bool) {
	switch v := raw.(type) {
	case nil:
		if !havePrev {
			return targetint.FromInt64(0).Convert(valuePrec, true), true
		}
		next, err := prev.Add(targetint.FromInt64(1).Convert(valuePrec, true))
		if err != nil {
			l.errorf(diag.DeclBadValue, sp, "overflow in enumeration value %s", name)
			return targetint.TargetInt{}, false
		}
		return next, true
	case string:
		t, err := targetint.Parse(v, valuePrec, true)
		if err != nil {
			l.errorf(diag.DeclBadValue, sp, "enumerator %s: %v", name, err)
			return targetint.TargetInt{}, false
		}
		return t, true
	case int64:
		return targetint.FromInt64(v).Convert(valuePrec, true), true
	default:
		l.errorf(diag.DeclBadValue, sp, "enumerator %s: value must be a string or an integer, not %T", name, raw)
		return targetint.TargetInt{}, false
	}
}

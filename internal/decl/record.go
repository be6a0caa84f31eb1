package decl

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"ccabi/internal/diag"
	"ccabi/internal/layout"
	"ccabi/internal/source"
	"ccabi/internal/types"
)

func (l *loader) evaluateRecord(d *Decl) {
	doc := d.record
	union := d.Kind == KindUnion

	aligned, ok := l.alignment(doc.Aligned, d.Span)
	d.RecordAttrs = layout.RecordAttrs{Aligned: aligned, Packed: doc.Packed}

	seen := make(map[string]source.Span)
	last := len(doc.Members) - 1
	for i, ms := range doc.Members {
		m, good := l.member(i, ms, d.spans[i], union, i == last)
		if !good {
			ok = false
			continue
		}
		for _, name := range memberNames(m) {
			if prev, dup := seen[name]; dup {
				diag.ReportError(l.r, diag.DeclDuplicateMember, m.Span, fmt.Sprintf("duplicate member %q", name)).
					WithNote(prev, "previous declaration is here").Emit()
				ok = false
				continue
			}
			seen[name] = m.Span
		}
		d.Record.Members = append(d.Record.Members, m)
	}
	if !ok {
		d.Failed = true
		return
	}

	var err error
	if union {
		err = l.arch.LayoutUnion(l.ctx, d.Record, d.RecordAttrs)
	} else {
		err = l.arch.LayoutStruct(l.ctx, d.Record, d.RecordAttrs)
	}
	if err != nil {
		sp := d.Span
		var lerr *layout.LayoutError
		if errors.As(err, &lerr) && !lerr.Span.Empty() {
			sp = lerr.Span
		}
		l.errorf(diag.LayoutFailed, sp, "%s %s: %v", d.Kind, d.Name, err)
		d.Failed = true
		return
	}
	if !l.fitsAddressSpace(d) {
		d.Failed = true
	}
}

// fitsAddressSpace reports a record whose size or member offsets do not
// fit in 64 bits, as gcc does with "size of array is too large".
func (l *loader) fitsAddressSpace(d *Decl) bool {
	if d.Record.IsSizeConstant() {
		if _, err := d.Record.Size().Uint64(); err != nil {
			l.errorf(diag.LayoutTooLarge, d.Span, "size of %s %s is too large", d.Kind, d.Name)
			return false
		}
	}
	for _, m := range d.Record.Members {
		off, constant := m.Offset()
		if !constant {
			continue
		}
		if _, err := off.Uint64(); err != nil {
			l.errorf(diag.LayoutTooLarge, m.Span, "offset of member %q in %s %s is too large", m.Name, d.Kind, d.Name)
			return false
		}
	}
	return true
}

// memberNames returns the names a member adds to the record: its own, or
// for an anonymous struct or union the names of its members.
func memberNames(m *types.Member) []string {
	if m.Name != "" {
		return []string{m.Name}
	}
	if !m.IsAnonymousRecord() {
		return nil
	}
	var names []string
	for _, inner := range m.Type.(types.Record).Content.Members {
		names = append(names, memberNames(inner)...)
	}
	return names
}

func (l *loader) member(i int, ms memberEntry, sp source.Span, union, last bool) (*types.Member, bool) {
	name := norm.NFC.String(strings.TrimSpace(ms.Name))
	label := name
	if label == "" {
		label = fmt.Sprintf("#%d", i)
	}
	if name != "" && !isIdentifier(name) {
		l.errorf(diag.DeclMissingName, sp, "%q is not an identifier", name)
		return nil, false
	}

	te, err := parseType(ms.Type)
	if err != nil {
		l.errorf(diag.DeclBadType, sp, "member %s: type %q: %v", label, ms.Type, err)
		return nil, false
	}
	t, ok := l.resolve(te, sp)
	if !ok {
		return nil, false
	}
	aligned, ok := l.alignment(ms.Aligned, sp)
	if !ok {
		return nil, false
	}
	m := &types.Member{Name: name, Packed: ms.Packed, Aligned: aligned, Span: sp}

	if ms.Bits != nil {
		if ms.Mode != "" {
			l.errorf(diag.DeclBadMode, sp, "mode attribute on bit-field %s", label)
			return nil, false
		}
		bf, ok := l.bitfield(label, name != "", te, t, *ms.Bits, sp)
		if !ok {
			return nil, false
		}
		m.Type = bf
		return m, true
	}

	obj, isObject := t.(types.ObjectType)
	if !isObject {
		l.errorf(diag.DeclIncompleteMember, sp, "member %s has incomplete type %s", label, t)
		return nil, false
	}
	if ms.Mode != "" {
		if obj, ok = l.applyMode(obj, ms.Mode, sp); !ok {
			return nil, false
		}
	}
	if _, isRecord := obj.(types.Record); name == "" && !isRecord {
		l.errorf(diag.DeclMissingName, sp, "member %s of type %s needs a name", label, obj)
		return nil, false
	}
	if !obj.IsComplete() {
		arr, isArray := obj.(types.Array)
		if !isArray || union || !last || !arr.Elem.IsComplete() {
			l.errorf(diag.DeclIncompleteMember, sp, "member %s has incomplete type %s", label, obj)
			return nil, false
		}
	}
	m.Type = obj
	return m, true
}

// bitfield checks and builds a bit-field type. A plain int, short or long
// base gets the target's default bit-field signedness.
func (l *loader) bitfield(label string, named bool, te typeExpr, t types.Type, width int64, sp source.Span) (*types.Bitfield, bool) {
	var base types.IntegerType
	switch bt := t.(type) {
	case types.Int:
		if te.isPlainInt() {
			bt.Signed = l.arch.IsBitfieldDefaultSigned()
		}
		base = bt
	case types.PlainChar:
		base = bt
	case types.Bool:
		base = bt
	case types.Enum:
		if !bt.IsComplete() {
			l.errorf(diag.DeclBitfieldIncompleteEnum, sp, "bit-field %s has incomplete type %s", label, bt)
			return nil, false
		}
		base = bt
	default:
		l.errorf(diag.DeclBitfieldBase, sp, "bit-field %s has invalid type %s", label, t)
		return nil, false
	}

	switch {
	case width < 0:
		l.errorf(diag.DeclBitfieldNegative, sp, "negative width in bit-field %s", label)
		return nil, false
	case width > int64(base.Width(l.arch)):
		l.errorf(diag.DeclBitfieldWidth, sp, "width of %s exceeds its type", label)
		return nil, false
	case width == 0 && named:
		l.errorf(diag.DeclZeroWidthNamed, sp, "zero width for bit-field %s", label)
		return nil, false
	}
	w, err := safecast.Conv[int](width)
	if err != nil {
		l.errorf(diag.DeclBitfieldWidth, sp, "width of %s: %v", label, err)
		return nil, false
	}
	return &types.Bitfield{Base: base, Width: w}, true
}

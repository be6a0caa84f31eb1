package decl

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"ccabi/internal/arch"
	"ccabi/internal/diag"
	"ccabi/internal/layout"
	"ccabi/internal/source"
	"ccabi/internal/trace"
	"ccabi/internal/types"
)

type evalState uint8

const (
	statePending evalState = iota
	stateBusy
	stateDone
)

// Decl is one struct, union or enum of a declaration file.
type Decl struct {
	Kind Kind
	Name string
	Span source.Span

	// Type is the types.Record or types.Enum the declaration defines.
	Type types.ObjectType

	Record      *types.RecordContent
	RecordAttrs layout.RecordAttrs

	Enum      *types.EnumContent
	EnumAttrs layout.EnumAttrs

	// Failed is set if the declaration could not be laid out or evaluated.
	Failed bool

	state  evalState
	record *recordEntry
	enum   *enumEntry
	spans  []source.Span // per member or enumerator
}

// File is a loaded declaration file.
type File struct {
	ID    source.FileID
	Path  string
	Decls []*Decl
}

// Lookup returns the declaration with the given tag.
func (f *File) Lookup(name string) (*Decl, bool) {
	for _, d := range f.Decls {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

type loader struct {
	ctx  context.Context
	arch arch.Architecture
	r    diag.Reporter
	loc  *locator

	tags        map[string]*Decl
	enumerators map[string]source.Span
}

// Load decodes the declaration file id of fs and lays out every
// declaration on a. Declaration problems go to r. The returned error is
// an *Error if the file is not a valid declaration file.
func Load(ctx context.Context, fs *source.FileSet, id source.FileID, a arch.Architecture, r diag.Reporter) (*File, error) {
	if r == nil {
		r = diag.NopReporter{}
	}
	// an unknown key repeated in several array entries has one key path
	// and one located span
	r = diag.NewDedupReporter(r)
	sf := fs.Get(id)
	path := fs.DisplayPath(id)

	doc, order, md, err := decodeDoc(path, string(sf.Content))
	if err != nil {
		diag.ReportError(r, diag.DeclSyntax, source.Span{File: id}, err.Error()).Emit()
		return nil, err
	}

	l := &loader{
		ctx:         ctx,
		arch:        a,
		r:           r,
		loc:         newLocator(sf),
		tags:        make(map[string]*Decl),
		enumerators: make(map[string]source.Span),
	}
	for _, key := range md.Undecoded() {
		name := key[len(key)-1]
		diag.ReportError(r, diag.DeclUnknownKey, l.loc.findKey(name), fmt.Sprintf("unknown key %q", key.String())).Emit()
	}

	file := &File{ID: id, Path: path}
	for _, ref := range order {
		d := l.declare(doc, ref)
		file.Decls = append(file.Decls, d)
	}
	for _, d := range file.Decls {
		l.evaluate(d)
	}
	return file, nil
}

// declare creates the declaration, checks its name and locates the spans
// of its parts. Spans are located here, in document order.
func (l *loader) declare(doc fileDoc, ref docRef) *Decl {
	d := &Decl{Kind: ref.kind}
	var rawName string
	switch ref.kind {
	case KindStruct:
		d.record = &doc.Struct[ref.index]
		rawName = d.record.Name
	case KindUnion:
		d.record = &doc.Union[ref.index]
		rawName = d.record.Name
	case KindEnum:
		d.enum = &doc.Enum[ref.index]
		rawName = d.enum.Name
	}
	d.Name = norm.NFC.String(strings.TrimSpace(rawName))
	d.Span = l.loc.find("name", rawName)

	if d.record != nil {
		for _, m := range d.record.Members {
			d.spans = append(d.spans, l.loc.find("name", m.Name))
		}
		d.Record = &types.RecordContent{}
		d.Type = types.Record{Union: ref.kind == KindUnion, Tag: d.Name, Content: d.Record}
	} else {
		for _, v := range d.enum.Values {
			d.spans = append(d.spans, l.loc.find("name", v.Name))
		}
		d.Enum = &types.EnumContent{}
		d.Type = types.Enum{Tag: d.Name, Content: d.Enum}
	}

	switch {
	case d.Name == "":
		l.errorf(diag.DeclMissingName, d.Span, "%s without a name", d.Kind)
		d.Failed = true
	case !isIdentifier(d.Name):
		l.errorf(diag.DeclMissingName, d.Span, "%q is not an identifier", d.Name)
		d.Failed = true
	default:
		if prev, ok := l.tags[d.Name]; ok {
			diag.ReportError(l.r, diag.DeclDuplicateTag, d.Span, fmt.Sprintf("redefinition of %s %s", d.Kind, d.Name)).
				WithNote(prev.Span, "previous definition is here").Emit()
			d.Failed = true
		} else {
			l.tags[d.Name] = d
		}
	}
	return d
}

// evaluate lays out or evaluates d once, first evaluating the declarations
// its members refer to by value. A declaration that is still being
// evaluated when referred to is incomplete at that point.
func (l *loader) evaluate(d *Decl) {
	if d.state != statePending {
		return
	}
	d.state = stateBusy
	defer func() { d.state = stateDone }()
	if d.Failed {
		return
	}

	tracer := trace.FromContext(l.ctx)
	span := trace.Begin(tracer, trace.ScopeDecl, d.Kind.String()+" "+d.Name, trace.CurrentSpan(l.ctx))
	ctx := l.ctx
	l.ctx = trace.WithSpan(ctx, span)
	defer func() { l.ctx = ctx }()

	if d.record != nil {
		l.evaluateRecord(d)
	} else {
		l.evaluateEnum(d)
	}

	status := "ok"
	if d.Failed {
		status = "failed"
	}
	span.End(status)
}

func (l *loader) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(l.r, code, sp, fmt.Sprintf(format, args...)).Emit()
}

// alignment converts an aligned attribute in bytes, 0 meaning none.
func (l *loader) alignment(bytes int64, sp source.Span) (types.Alignment, bool) {
	if bytes == 0 {
		return types.NoAlignment, true
	}
	if bytes < 0 {
		l.errorf(diag.DeclBadAlignment, sp, "requested alignment %d is negative", bytes)
		return types.NoAlignment, false
	}
	a, err := types.AlignBytes(uint64(bytes))
	if err != nil {
		l.errorf(diag.DeclBadAlignment, sp, "%v", err)
		return types.NoAlignment, false
	}
	if log2, _ := a.Log2(); log2 > 28 {
		l.errorf(diag.DeclBadAlignment, sp, "requested alignment %d is too large", bytes)
		return types.NoAlignment, false
	}
	return a, true
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}

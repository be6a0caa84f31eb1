package diag

import (
	"sync"

	"ccabi/internal/source"
)

// Reporter receives diagnostics as they are found.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// ReportBuilder collects notes for one diagnostic and hands it to a
// Reporter on Emit. Emit is a no-op after the first call.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	done bool
}

func report(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

// ReportFatal starts a diagnostic that abandons the current declaration.
func ReportFatal(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevFatal, code, primary, msg)
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevWarning, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(sp, msg)
	}
	return b
}

func (b *ReportBuilder) Emit() {
	if b == nil || b.done {
		return
	}
	b.done = true
	if b.to != nil {
		b.to.Report(b.d.Code, b.d.Severity, b.d.Primary, b.d.Message, b.d.Notes)
	}
}

// BagReporter appends to a Bag under a mutex shared by its copies, so
// one reporter value may be handed to several goroutines.
type BagReporter struct {
	Bag *Bag
	mu  *sync.Mutex
}

func NewBagReporter(bag *Bag) BagReporter {
	return BagReporter{Bag: bag, mu: new(sync.Mutex)}
}

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	if r.mu != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.Span, string, []Note) {}

// DedupReporter passes on the first of any run of diagnostics that agree
// on code, severity, span and message. Notes are not compared.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]bool
}

type dedupKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: map[dedupKey]bool{}}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	k := dedupKey{code, sev, primary, msg}
	if r == nil || r.seen[k] {
		return
	}
	r.seen[k] = true
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

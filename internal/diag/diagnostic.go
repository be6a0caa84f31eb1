package diag

import (
	"fmt"

	"ccabi/internal/source"
)

// Note points at a location related to a diagnostic, such as an earlier
// declaration of a duplicate member.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

// NewError is New at SevError.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// Errorf is NewError with a formatted message.
func Errorf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return New(SevError, code, primary, fmt.Sprintf(format, args...))
}

// WithNote returns d with a note appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// IsError reports whether d is an error or fatal.
func (d Diagnostic) IsError() bool { return d.Severity >= SevError }

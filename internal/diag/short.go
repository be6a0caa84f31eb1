package diag

import (
	"fmt"
	"sort"
	"strings"

	"ccabi/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders one line per diagnostic (and per note when
// includeNotes is set):
//
//	error DCL1005 defs.abi.toml:3:5 member already declared
//
// The result is sorted by position and stable, which makes it usable for
// golden tests.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, shortOf(fs, d.Primary, d.Severity.Label(), d.Code, d.Message))
		if includeNotes {
			for _, n := range d.Notes {
				rendered = append(rendered, shortOf(fs, n.Span, "note", d.Code, n.Msg))
			}
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for i, d := range rendered {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
	}
	return b.String()
}

func shortOf(fs *source.FileSet, span source.Span, sev string, code Code, msg string) shortDiagnostic {
	start, _ := fs.Resolve(span)
	return shortDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Path:     fs.DisplayPath(span.File),
		Line:     start.Line,
		Column:   start.Col,
		Message:  sanitizeMessage(msg),
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

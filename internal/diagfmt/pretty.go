package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ccabi/internal/diag"
	"ccabi/internal/source"
)

type palette struct {
	sev     map[diag.Severity]*color.Color
	loc     *color.Color
	gutter  *color.Color
	caret   *color.Color
	noteHdr *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevFatal:   color.New(color.FgMagenta, color.Bold),
		},
		loc:     color.New(color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgGreen, color.Bold),
		noteHdr: color.New(color.FgCyan),
	}
	for _, c := range append([]*color.Color{p.loc, p.gutter, p.caret, p.noteHdr}, p.sev[diag.SevInfo], p.sev[diag.SevWarning], p.sev[diag.SevError], p.sev[diag.SevFatal]) {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes the diagnostics of bag in a human readable form:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the span underlined and, if enabled,
// the notes in the same form. bag is expected to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		sevColor := p.sev[d.Severity]
		if sevColor == nil {
			sevColor = p.sev[diag.SevError]
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprint(location(fs, d.Primary, opts.PathMode)),
			sevColor.Sprint(d.Severity.String()),
			d.Code.ID(),
			d.Message)
		writeSnippet(w, p, fs, d.Primary, int(opts.Context))

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.noteHdr.Sprint("note:"), p.loc.Sprint(location(fs, n.Span, opts.PathMode)), n.Msg)
			writeSnippet(w, p, fs, n.Span, 0)
		}
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(fs, sp.File, mode), start.Line, start.Col)
}

// writeSnippet prints the line of sp with context lines above it and a
// caret line underneath. Columns are measured in display cells.
func writeSnippet(w io.Writer, p palette, fs *source.FileSet, sp source.Span, context int) {
	f := fs.Get(sp.File)
	if len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	line := expandTabs(f.GetLine(start.Line))
	if strings.TrimSpace(line) == "" {
		return
	}

	numWidth := len(fmt.Sprint(start.Line))
	for n := max(1, int(start.Line)-context); n < int(start.Line); n++ {
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", numWidth, n), expandTabs(f.GetLine(uint32(n)))) //nolint:gosec // G115: n is a line number.
	}
	fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", numWidth, start.Line), line)

	raw := f.GetLine(start.Line)
	startCol := min(int(start.Col)-1, len(raw))
	endCol := len(raw)
	if end.Line == start.Line {
		endCol = min(max(int(end.Col)-1, startCol), len(raw))
	}
	pad := runewidth.StringWidth(expandTabs(raw[:startCol]))
	width := max(1, runewidth.StringWidth(expandTabs(raw[startCol:endCol])))
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprint(strings.Repeat(" ", numWidth)+" |"), strings.Repeat(" ", pad), p.caret.Sprint(marker))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

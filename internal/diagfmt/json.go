package diagfmt

import (
	"encoding/json"
	"io"

	"ccabi/internal/diag"
	"ccabi/internal/source"
)

// Location is a span as it appears in JSON output. Line and column are
// 1-based and present only with JSONOpts.IncludePositions.
type Location struct {
	File  string `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	Line  uint32 `json:"line,omitempty"`
	Col   uint32 `json:"col,omitempty"`
	EndLn uint32 `json:"end_line,omitempty"`
	EndCl uint32 `json:"end_col,omitempty"`
}

type Note struct {
	Message string   `json:"message"`
	At      Location `json:"at"`
}

type Entry struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	At       Location `json:"at"`
	Notes    []Note   `json:"notes,omitempty"`
}

// Document is the top-level JSON object. Errors and Warnings count the
// whole bag, not only the entries written.
type Document struct {
	Diagnostics []Entry `json:"diagnostics"`
	Errors      int     `json:"errors"`
	Warnings    int     `json:"warnings"`
	Dropped     int     `json:"dropped,omitempty"`
}

type jsonWriter struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (jw jsonWriter) location(sp source.Span) Location {
	loc := Location{File: displayPath(jw.fs, sp.File, jw.opts.PathMode), Start: sp.Start, End: sp.End}
	if jw.opts.IncludePositions {
		from, to := jw.fs.Resolve(sp)
		loc.Line, loc.Col = from.Line, from.Col
		loc.EndLn, loc.EndCl = to.Line, to.Col
	}
	return loc
}

func (jw jsonWriter) entry(d *diag.Diagnostic) Entry {
	e := Entry{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		At:       jw.location(d.Primary),
	}
	// a timing diagnostic is all payload
	if jw.opts.IncludeNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			e.Notes = append(e.Notes, Note{Message: n.Msg, At: jw.location(n.Span)})
		}
	}
	return e
}

// BuildDocument converts bag without encoding it. JSONOpts.Max caps the
// number of entries.
func BuildDocument(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Document {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	jw := jsonWriter{fs: fs, opts: opts}
	doc := Document{Diagnostics: make([]Entry, 0, len(items)), Dropped: bag.Dropped()}
	doc.Errors, doc.Warnings = bag.Counts()
	for i := range items {
		doc.Diagnostics = append(doc.Diagnostics, jw.entry(&items[i]))
	}
	return doc
}

// JSON writes bag as a single indented Document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDocument(bag, fs, opts))
}

package decl

import (
	"regexp"
	"strconv"

	"fortio.org/safecast"

	"ccabi/internal/source"
)

// locator finds the spans of key = "value" pairs. TOML decoding drops
// positions, so values are searched for in document order, each search
// starting where the previous one matched.
type locator struct {
	file    source.FileID
	content string
	cursor  int
}

func newLocator(f *source.File) *locator {
	return &locator{file: f.ID, content: string(f.Content)}
}

// find returns the span of the quoted value of the next key = "value"
// pair. If there is none after the cursor the whole file is searched; if
// that fails too the span is empty at the cursor.
func (l *locator) find(key, value string) source.Span {
	quoted := strconv.Quote(value)
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\s*=\s*` + regexp.QuoteMeta(quoted))
	if loc := re.FindStringIndex(l.content[l.cursor:]); loc != nil {
		end := l.cursor + loc[1]
		l.cursor = end
		return l.span(end-len(quoted), end)
	}
	if loc := re.FindStringIndex(l.content); loc != nil {
		return l.span(loc[1]-len(quoted), loc[1])
	}
	return l.span(l.cursor, l.cursor)
}

// findKey returns the span of the first occurrence of a bare key.
func (l *locator) findKey(key string) source.Span {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\s*=`)
	if loc := re.FindStringIndex(l.content); loc != nil {
		return l.span(loc[0], loc[0]+len(key))
	}
	return l.span(0, 0)
}

func (l *locator) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		s = 0
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		e = s
	}
	return source.Span{File: l.file, Start: s, End: e}
}

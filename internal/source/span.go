package source

import "fmt"

// Span is a half-open byte range [Start, End) in a file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.Start == s.End }

// Len returns the number of bytes covered.
func (s Span) Len() uint32 { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other. Spans of
// different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}

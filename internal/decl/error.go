package decl

import "fmt"

// ErrorKind classifies load failures.
type ErrorKind uint8

const (
	ErrSyntax ErrorKind = iota + 1 // not valid TOML
	ErrSchema                      // valid TOML of the wrong shape
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax"
	case ErrSchema:
		return "schema"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is returned when a declaration file cannot be decoded.
type Error struct {
	Kind ErrorKind
	Path string
	Line int // 1-based, 0 if unknown
	Err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s error: %v", e.Path, e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

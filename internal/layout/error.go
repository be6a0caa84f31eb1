package layout

import (
	"fmt"

	"ccabi/internal/diag"
	"ccabi/internal/source"
)

// LayoutErrorKind enumerates the reasons a record cannot be laid out.
type LayoutErrorKind uint8

const (
	// LayoutErrIncompleteMember is an incomplete member other than a
	// trailing flexible array member of a struct.
	LayoutErrIncompleteMember LayoutErrorKind = iota + 1
	LayoutErrBitfieldBase
	LayoutErrBitfieldWidth
	LayoutErrNamedZeroWidth
)

// LayoutError reports a record whose members violate the C constraints the
// layout algorithm relies on.
type LayoutError struct {
	Kind   LayoutErrorKind
	Member string
	Index  int
	Span   source.Span
	Detail string
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	name := e.Member
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	var msg string
	switch e.Kind {
	case LayoutErrIncompleteMember:
		msg = "incomplete type for member"
	case LayoutErrBitfieldBase:
		msg = "invalid bitfield base type"
	case LayoutErrBitfieldWidth:
		msg = "bit-field width exceeds underlying type's width"
	case LayoutErrNamedZeroWidth:
		msg = "zero width bit-field shall not have a declarator"
	default:
		msg = fmt.Sprintf("layout error kind=%d", e.Kind)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("member %s: %s", name, msg)
}

// EnumError reports an enum whose enumerators cannot be represented. The
// same problem has been reported as a fatal diagnostic.
type EnumError struct {
	Code       diag.Code
	Enumerator string
	Span       source.Span
}

func (e *EnumError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: enumerator %s", e.Code.Title(), e.Enumerator)
}

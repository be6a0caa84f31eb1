package layout

import "ccabi/internal/types"

// Target is what the layout algorithms need to know about an architecture.
type Target interface {
	types.ABI
	// IntKindForWidth returns the integer kind of the given bit width.
	IntKindForWidth(width int) (types.IntKind, bool)
}

// Options tune a layout call.
type Options struct {
	// MaxFieldAlign caps member alignment, like gcc's -fpack-struct=N.
	// Unset means no cap.
	MaxFieldAlign types.Alignment
}

// RecordAttrs are the attributes attached to a struct or union definition.
type RecordAttrs struct {
	Aligned types.Alignment
	Packed  bool
}

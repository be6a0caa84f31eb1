package arch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedMode reports a machine mode the target has no type for.
var ErrUnsupportedMode = errors.New("unsupported machine mode")

// IntMode is an integer machine mode as used by __attribute__((mode)).
type IntMode uint8

const (
	ModeNone IntMode = iota
	ModeQI
	ModeHI
	ModeSI
	ModeDI
	ModeTI
)

var intModeNames = [...]string{
	ModeNone: "none",
	ModeQI:   "QI",
	ModeHI:   "HI",
	ModeSI:   "SI",
	ModeDI:   "DI",
	ModeTI:   "TI",
}

func (m IntMode) String() string {
	if int(m) < len(intModeNames) {
		return intModeNames[m]
	}
	return fmt.Sprintf("IntMode(%d)", m)
}

// Width returns the width in bits, 0 for ModeNone.
func (m IntMode) Width() int {
	switch m {
	case ModeQI:
		return 8
	case ModeHI:
		return 16
	case ModeSI:
		return 32
	case ModeDI:
		return 64
	case ModeTI:
		return 128
	default:
		return 0
	}
}

// WidthToIntMode returns the mode of the given width.
func WidthToIntMode(width int) (IntMode, bool) {
	for m := ModeQI; m <= ModeTI; m++ {
		if m.Width() == width {
			return m, true
		}
	}
	return ModeNone, false
}

// IntModeToWidth returns the width of m.
func IntModeToWidth(m IntMode) int { return m.Width() }

// FloatMode is a floating point machine mode.
type FloatMode uint8

const (
	FloatModeNone FloatMode = iota
	ModeSF
	ModeDF
	ModeXF
	ModeTF
)

func (m FloatMode) String() string {
	switch m {
	case ModeSF:
		return "SF"
	case ModeDF:
		return "DF"
	case ModeXF:
		return "XF"
	case ModeTF:
		return "TF"
	default:
		return "none"
	}
}

// ParseMode parses a mode attribute argument. gcc accepts the names with
// and without surrounding double underscores, and "byte", "word" and
// "pointer" which resolve through the architecture.
func ParseMode(a Architecture, s string) (IntMode, FloatMode, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(s, "__"), "__")
	switch name {
	case "byte":
		return ModeQI, FloatModeNone, nil
	case "word":
		return a.WordMode(), FloatModeNone, nil
	case "pointer":
		return a.PointerMode(), FloatModeNone, nil
	}
	for m := ModeQI; m <= ModeTI; m++ {
		if m.String() == name {
			return m, FloatModeNone, nil
		}
	}
	for m := ModeSF; m <= ModeTF; m++ {
		if m.String() == name {
			return ModeNone, m, nil
		}
	}
	return ModeNone, FloatModeNone, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

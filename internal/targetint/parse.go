package targetint

import (
	"fmt"
	"strings"

	"ccabi/internal/mpa"
)

// Parse reads a C integer literal with an optional sign at the given
// precision. Accepted forms are decimal, 0x hexadecimal, 0b binary and
// 0-prefixed octal; '_' separators and u/U/l/L suffixes are ignored.
func Parse(text string, prec int, signed bool) (TargetInt, error) {
	s := strings.TrimSpace(text)
	negative := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}
	s = strings.TrimRight(s, "uUlL")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return TargetInt{}, fmt.Errorf("%w: empty integer literal %q", mpa.ErrParse, text)
	}

	base := 10
	switch {
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		base, s = 16, s[2:]
	case len(s) > 2 && (s[:2] == "0b" || s[:2] == "0B"):
		base, s = 2, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}

	mag, err := mpa.FromString(s, base)
	if err != nil {
		return TargetInt{}, fmt.Errorf("integer literal %q: %w", text, err)
	}
	return FromMagnitude(mag, negative, prec, signed)
}

// MustParse is like Parse but panics on error.
func MustParse(text string, prec int, signed bool) TargetInt {
	v, err := Parse(text, prec, signed)
	if err != nil {
		panic(err)
	}
	return v
}

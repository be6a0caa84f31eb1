package mpa

import (
	"slices"
	"strconv"
	"strings"
)

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// ToString formats a in the given base using lower case letters for digits
// above 9.
func (a Limbs) ToString(base int) (string, error) {
	ub, err := checkBase(base)
	if err != nil {
		return "", err
	}
	b := FromUint64(ub)
	var out []byte
	val := a
	for {
		q, r, err := val.DivMod(b)
		if err != nil {
			return "", err
		}
		out = append(out, digits[r.at(0)])
		val = q
		if val.IsZero() {
			break
		}
	}
	slices.Reverse(out)
	return string(out), nil
}

// String formats a in decimal.
func (a Limbs) String() string {
	s, err := a.ToString(10)
	if err != nil {
		return "<format-error>"
	}
	return s
}

// GoString formats a as a list of hexadecimal limbs, most significant first.
func (a Limbs) GoString() string {
	var sb strings.Builder
	sb.WriteString("mpa.Limbs{")
	for i := len(a.limbs) - 1; i >= 0; i-- {
		if i != len(a.limbs)-1 {
			sb.WriteString(", ")
		}
		sb.WriteString("0x")
		sb.WriteString(strconv.FormatUint(uint64(a.limbs[i]), 16))
	}
	sb.WriteString("}")
	return sb.String()
}

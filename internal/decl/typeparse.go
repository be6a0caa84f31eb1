package decl

import (
	"fmt"
	"strings"
	"unicode"

	"ccabi/internal/mpa"
	"ccabi/internal/targetint"
	"ccabi/internal/types"
)

type baseKind uint8

const (
	baseVoid baseKind = iota + 1
	baseBool
	baseInt
	baseFloat
	baseTag
)

// typeExpr is a parsed type name such as "unsigned long[4]" or
// "struct foo *".
type typeExpr struct {
	base baseKind

	intKind      types.IntKind
	signed       bool
	explicitSign bool
	plainChar    bool

	floatKind types.FloatKind
	complex   bool

	tagKind Kind
	tag     string

	pointers int
	dims     []arrayDim // outermost first
}

type arrayDim struct {
	length    mpa.Limbs
	hasLength bool
}

// isPlainInt reports an integer type spelled without signed or unsigned,
// whose signedness in a bit-field is up to the target.
func (te typeExpr) isPlainInt() bool {
	return te.base == baseInt && !te.explicitSign && !te.plainChar && te.pointers == 0 && len(te.dims) == 0
}

type typeToken struct {
	text string
	pos  int
}

// isWordByte accepts identifier and number bytes. Bytes of multi-byte
// UTF-8 sequences are taken as identifier bytes.
func isWordByte(b byte) bool {
	return b == '_' || b >= 0x80 || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
}

func tokenizeType(s string) ([]typeToken, error) {
	var toks []typeToken
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '*' || c == '[' || c == ']':
			toks = append(toks, typeToken{string(c), i})
			i++
		case isWordByte(s[i]):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			toks = append(toks, typeToken{s[i:j], i})
			i = j
		default:
			return nil, fmt.Errorf("unexpected %q at column %d", c, i+1)
		}
	}
	return toks, nil
}

// parseType parses the type syntax of declaration files: C declaration
// specifiers followed by pointer stars and array suffixes.
func parseType(s string) (typeExpr, error) {
	toks, err := tokenizeType(s)
	if err != nil {
		return typeExpr{}, err
	}
	if len(toks) == 0 {
		return typeExpr{}, fmt.Errorf("empty type")
	}

	i := 0
	var words []string
	for i < len(toks) && toks[i].text != "*" && toks[i].text != "[" {
		words = append(words, toks[i].text)
		i++
	}
	te, err := parseSpecifiers(words)
	if err != nil {
		return typeExpr{}, err
	}

	for i < len(toks) && toks[i].text == "*" {
		te.pointers++
		i++
	}
	for i < len(toks) {
		if toks[i].text != "[" {
			return typeExpr{}, fmt.Errorf("unexpected %q at column %d", toks[i].text, toks[i].pos+1)
		}
		i++
		var d arrayDim
		if i < len(toks) && toks[i].text != "]" {
			n, err := targetint.Parse(toks[i].text, 64, false)
			if err != nil {
				return typeExpr{}, fmt.Errorf("array length %q: %w", toks[i].text, err)
			}
			d = arrayDim{length: n.Limbs(), hasLength: true}
			i++
		}
		if i >= len(toks) || toks[i].text != "]" {
			return typeExpr{}, fmt.Errorf("missing ']'")
		}
		i++
		te.dims = append(te.dims, d)
	}
	for _, d := range te.dims[min(1, len(te.dims)):] {
		if !d.hasLength {
			return typeExpr{}, fmt.Errorf("only the outermost array dimension may be omitted")
		}
	}
	return te, nil
}

func parseSpecifiers(words []string) (typeExpr, error) {
	if len(words) == 0 {
		return typeExpr{}, fmt.Errorf("missing type specifier")
	}
	if kind, ok := kindOfKey(words[0]); ok {
		if len(words) != 2 {
			return typeExpr{}, fmt.Errorf("%s needs exactly one tag", words[0])
		}
		return typeExpr{base: baseTag, tagKind: kind, tag: words[1]}, nil
	}

	var n struct {
		signed, unsigned, char, short, int_, long, int128, bool_, void, float, double, complex int
	}
	for _, w := range words {
		switch w {
		case "signed", "__signed__":
			n.signed++
		case "unsigned":
			n.unsigned++
		case "char":
			n.char++
		case "short":
			n.short++
		case "int":
			n.int_++
		case "long":
			n.long++
		case "__int128":
			n.int128++
		case "_Bool":
			n.bool_++
		case "void":
			n.void++
		case "float":
			n.float++
		case "double":
			n.double++
		case "_Complex", "__complex__":
			n.complex++
		default:
			return typeExpr{}, fmt.Errorf("unknown type specifier %q", w)
		}
	}

	sign := n.signed + n.unsigned
	switch {
	case sign > 1:
		return typeExpr{}, fmt.Errorf("conflicting signedness in %q", strings.Join(words, " "))
	case n.void+n.bool_+n.float+n.double > 0:
		if sign+n.char+n.short+n.int_+n.int128 > 0 || n.void+n.bool_+n.float+n.double > 1 {
			return typeExpr{}, fmt.Errorf("invalid type %q", strings.Join(words, " "))
		}
		te := typeExpr{complex: n.complex == 1}
		switch {
		case n.void == 1 && n.long == 0 && n.complex == 0:
			te.base = baseVoid
		case n.bool_ == 1 && n.long == 0 && n.complex == 0:
			te.base = baseBool
		case n.float == 1 && n.long == 0:
			te.base, te.floatKind = baseFloat, types.FloatFloat
		case n.double == 1 && n.long == 0:
			te.base, te.floatKind = baseFloat, types.FloatDouble
		case n.double == 1 && n.long == 1:
			te.base, te.floatKind = baseFloat, types.FloatLongDouble
		default:
			return typeExpr{}, fmt.Errorf("invalid type %q", strings.Join(words, " "))
		}
		if n.complex > 1 {
			return typeExpr{}, fmt.Errorf("duplicate _Complex")
		}
		return te, nil
	case n.complex > 0:
		return typeExpr{}, fmt.Errorf("_Complex requires a floating type")
	}

	te := typeExpr{base: baseInt, signed: n.unsigned == 0, explicitSign: sign == 1}
	switch {
	case n.char == 1 && n.short+n.int_+n.long+n.int128 == 0:
		te.intKind = types.IntChar
		te.plainChar = sign == 0
	case n.short == 1 && n.char+n.long+n.int128 == 0 && n.int_ <= 1:
		te.intKind = types.IntShort
	case n.long == 1 && n.char+n.short+n.int128 == 0 && n.int_ <= 1:
		te.intKind = types.IntLong
	case n.long == 2 && n.char+n.short+n.int128 == 0 && n.int_ <= 1:
		te.intKind = types.IntLongLong
	case n.int128 == 1 && n.char+n.short+n.long+n.int_ == 0:
		te.intKind = types.IntInt128
	case n.int_ <= 1 && n.char+n.short+n.long+n.int128 == 0:
		te.intKind = types.IntInt
	default:
		return typeExpr{}, fmt.Errorf("invalid type %q", strings.Join(words, " "))
	}
	return te, nil
}

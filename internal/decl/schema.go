package decl

import (
	"errors"

	"github.com/BurntSushi/toml"
)

type fileDoc struct {
	Struct []recordEntry `toml:"struct"`
	Union  []recordEntry `toml:"union"`
	Enum   []enumEntry   `toml:"enum"`
}

type recordEntry struct {
	Name    string        `toml:"name"`
	Packed  bool          `toml:"packed"`
	Aligned int64         `toml:"aligned"`
	Members []memberEntry `toml:"members"`
}

type memberEntry struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Bits    *int64 `toml:"bits"`
	Packed  bool   `toml:"packed"`
	Aligned int64  `toml:"aligned"`
	Mode    string `toml:"mode"`
}

type enumEntry struct {
	Name    string       `toml:"name"`
	Packed  bool         `toml:"packed"`
	Aligned int64        `toml:"aligned"`
	Mode    string       `toml:"mode"`
	Values  []valueEntry `toml:"values"`
}

type valueEntry struct {
	Name string `toml:"name"`
	// Value is a C literal string, a TOML integer or absent.
	Value any `toml:"value"`
}

// Kind is the kind of a declaration.
type Kind uint8

const (
	KindStruct Kind = iota + 1
	KindUnion
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	default:
		return "?"
	}
}

func kindOfKey(s string) (Kind, bool) {
	switch s {
	case "struct":
		return KindStruct, true
	case "union":
		return KindUnion, true
	case "enum":
		return KindEnum, true
	default:
		return 0, false
	}
}

// docRef points into fileDoc.
type docRef struct {
	kind  Kind
	index int
}

// decodeDoc decodes content and returns the declarations in document
// order.
func decodeDoc(path string, content string) (fileDoc, []docRef, toml.MetaData, error) {
	var doc fileDoc
	md, err := toml.Decode(content, &doc)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return doc, nil, md, &Error{Kind: ErrSyntax, Path: path, Line: perr.Line, Err: err}
		}
		return doc, nil, md, &Error{Kind: ErrSchema, Path: path, Err: err}
	}
	return doc, documentOrder(doc, md), md, nil
}

// documentOrder interleaves the three arrays of tables the way they appear
// in the file. Each [[struct]], [[union]] and [[enum]] header is a key of
// length one in md.Keys(). If the keys do not account for every element,
// as with inline arrays, the kinds are taken one after the other.
func documentOrder(doc fileDoc, md toml.MetaData) []docRef {
	counts := map[Kind]int{
		KindStruct: len(doc.Struct),
		KindUnion:  len(doc.Union),
		KindEnum:   len(doc.Enum),
	}
	seen := map[Kind]int{}
	var order []docRef
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		kind, ok := kindOfKey(key[0])
		if !ok || seen[kind] >= counts[kind] {
			continue
		}
		order = append(order, docRef{kind: kind, index: seen[kind]})
		seen[kind]++
	}
	if len(order) == counts[KindStruct]+counts[KindUnion]+counts[KindEnum] {
		return order
	}

	order = order[:0]
	for _, kind := range []Kind{KindStruct, KindUnion, KindEnum} {
		for i := range counts[kind] {
			order = append(order, docRef{kind: kind, index: i})
		}
	}
	return order
}

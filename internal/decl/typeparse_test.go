package decl

import (
	"testing"

	"ccabi/internal/types"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want typeExpr
	}{
		{"int", typeExpr{base: baseInt, intKind: types.IntInt, signed: true}},
		{"unsigned", typeExpr{base: baseInt, intKind: types.IntInt, explicitSign: true}},
		{"signed char", typeExpr{base: baseInt, intKind: types.IntChar, signed: true, explicitSign: true}},
		{"char", typeExpr{base: baseInt, intKind: types.IntChar, signed: true, plainChar: true}},
		{"unsigned short int", typeExpr{base: baseInt, intKind: types.IntShort, explicitSign: true}},
		{"long unsigned", typeExpr{base: baseInt, intKind: types.IntLong, explicitSign: true}},
		{"long long", typeExpr{base: baseInt, intKind: types.IntLongLong, signed: true}},
		{"unsigned __int128", typeExpr{base: baseInt, intKind: types.IntInt128, explicitSign: true}},
		{"_Bool", typeExpr{base: baseBool}},
		{"void *", typeExpr{base: baseVoid, pointers: 1}},
		{"long double", typeExpr{base: baseFloat, floatKind: types.FloatLongDouble}},
		{"_Complex float", typeExpr{base: baseFloat, floatKind: types.FloatFloat, complex: true}},
		{"struct node**", typeExpr{base: baseTag, tagKind: KindStruct, tag: "node", pointers: 2}},
		{"enum color", typeExpr{base: baseTag, tagKind: KindEnum, tag: "color"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseType(tt.in)
			if err != nil {
				t.Fatalf("parseType(%q): %v", tt.in, err)
			}
			if got.base != tt.want.base || got.intKind != tt.want.intKind || got.signed != tt.want.signed ||
				got.explicitSign != tt.want.explicitSign || got.plainChar != tt.want.plainChar ||
				got.floatKind != tt.want.floatKind || got.complex != tt.want.complex ||
				got.tagKind != tt.want.tagKind || got.tag != tt.want.tag || got.pointers != tt.want.pointers {
				t.Fatalf("parseType(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTypeArrays(t *testing.T) {
	te, err := parseType("int *[][0x10]")
	if err != nil {
		t.Fatalf("parseType: %v", err)
	}
	if te.pointers != 1 || len(te.dims) != 2 {
		t.Fatalf("got %d pointers and %d dims", te.pointers, len(te.dims))
	}
	if te.dims[0].hasLength {
		t.Fatalf("outer dimension should be omitted")
	}
	if n, err := te.dims[1].length.Uint64(); !te.dims[1].hasLength || err != nil || n != 16 {
		t.Fatalf("inner dimension = %+v, want 16", te.dims[1])
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"signed unsigned int",
		"long char",
		"short long",
		"float int",
		"_Complex int",
		"struct",
		"struct a b",
		"int [4",
		"int [4][]",
		"int [-1]",
		"int * x",
		"typeof(int)",
		"mystery",
	} {
		if _, err := parseType(in); err == nil {
			t.Errorf("parseType(%q) succeeded", in)
		}
	}
}

func TestIsPlainInt(t *testing.T) {
	for in, want := range map[string]bool{
		"int":          true,
		"long":         true,
		"signed int":   false,
		"unsigned":     false,
		"char":         false,
		"int *":        false,
		"enum e":       false,
		"signed short": false,
	} {
		te, err := parseType(in)
		if err != nil {
			t.Fatalf("parseType(%q): %v", in, err)
		}
		if got := te.isPlainInt(); got != want {
			t.Errorf("isPlainInt(%q) = %v, want %v", in, got, want)
		}
	}
}

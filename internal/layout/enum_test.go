package layout_test

import (
	"context"
	"errors"
	"testing"

	"ccabi/internal/diag"
	"ccabi/internal/layout"
	"ccabi/internal/targetint"
	"ccabi/internal/types"
)

func enumContent(values ...targetint.TargetInt) *types.EnumContent {
	c := &types.EnumContent{}
	for i, v := range values {
		c.Members = append(c.Members, &types.EnumMember{Name: string(rune('A' + i)), Value: v})
	}
	return c
}

func TestEvaluateEnumType(t *testing.T) {
	i64 := targetint.FromInt64
	u64 := targetint.FromUint64
	cases := []struct {
		name       string
		values     []targetint.TargetInt
		attrs      layout.EnumAttrs
		underlying types.Int
		members    []types.Int
	}{
		{"zero and one", []targetint.TargetInt{i64(0), i64(1)}, layout.EnumAttrs{},
			types.UnsignedInt, []types.Int{types.SignedInt, types.SignedInt}},
		{"minus one", []targetint.TargetInt{i64(-1)}, layout.EnumAttrs{},
			types.SignedInt, []types.Int{types.SignedInt}},
		{"above 32 bits", []targetint.TargetInt{u64(0x1_0000_0001)}, layout.EnumAttrs{},
			types.UnsignedLong, []types.Int{types.UnsignedLong}},
		{"unsigned int range", []targetint.TargetInt{u64(0xffff_ffff)}, layout.EnumAttrs{},
			types.UnsignedInt, []types.Int{types.UnsignedInt}},
		{"negative widens", []targetint.TargetInt{i64(-1), u64(0xffff_ffff)}, layout.EnumAttrs{},
			types.SignedLong, []types.Int{types.SignedInt, types.SignedLong}},
		{"int range with negative", []targetint.TargetInt{i64(-2147483648), i64(2147483647)}, layout.EnumAttrs{},
			types.SignedInt, []types.Int{types.SignedInt, types.SignedInt}},
		{"packed char", []targetint.TargetInt{i64(0), i64(1)}, layout.EnumAttrs{Packed: true},
			types.Int{IntKind: types.IntChar, Signed: true}, []types.Int{types.SignedInt, types.SignedInt}},
		{"packed short", []targetint.TargetInt{i64(-300)}, layout.EnumAttrs{Packed: true},
			types.Int{IntKind: types.IntShort, Signed: true}, []types.Int{types.SignedInt}},
		{"packed int stays unsigned", []targetint.TargetInt{i64(70000)}, layout.EnumAttrs{Packed: true},
			types.UnsignedInt, []types.Int{types.SignedInt}},
		{"mode HI", []targetint.TargetInt{i64(1)}, layout.EnumAttrs{ModeWidth: 16},
			types.Int{IntKind: types.IntShort, Signed: true}, []types.Int{types.SignedInt}},
		{"mode DI", []targetint.TargetInt{i64(1)}, layout.EnumAttrs{ModeWidth: 64},
			types.UnsignedLong, []types.Int{types.SignedInt}},
		{"alignment applied", []targetint.TargetInt{i64(1)}, layout.EnumAttrs{Aligned: types.AlignLog2(3)},
			types.Int{IntKind: types.IntInt, Align: types.AlignLog2(3)}, []types.Int{types.SignedInt}},
		{"huge alignment applied", []targetint.TargetInt{i64(1)}, layout.EnumAttrs{Aligned: types.AlignLog2(61)},
			types.Int{IntKind: types.IntInt, Align: types.AlignLog2(61)}, []types.Int{types.SignedInt}},
		{"alignment beyond 64 bits applied", []targetint.TargetInt{i64(1)}, layout.EnumAttrs{Aligned: types.AlignLog2(64)},
			types.Int{IntKind: types.IntInt, Align: types.AlignLog2(64)}, []types.Int{types.SignedInt}},
		{"alignment below width ignored", []targetint.TargetInt{i64(1)}, layout.EnumAttrs{Aligned: types.AlignLog2(1)},
			types.UnsignedInt, []types.Int{types.SignedInt}},
		{"empty", nil, layout.EnumAttrs{},
			types.UnsignedInt, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := enumContent(tc.values...)
			bag := diag.NewBag(10)
			if err := layout.EvaluateEnumType(context.Background(), x86, diag.NewBagReporter(bag), c, tc.attrs); err != nil {
				t.Fatalf("EvaluateEnumType: %v", err)
			}
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %v", bag.Items())
			}
			if !c.IsEvaluated() {
				t.Fatalf("content not evaluated")
			}
			if got := c.Underlying(); got != tc.underlying {
				t.Errorf("underlying = %s, want %s", got, tc.underlying)
			}
			for i, m := range c.Members {
				if m.Type != tc.members[i] {
					t.Errorf("member %s type = %s, want %s", m.Name, m.Type, tc.members[i])
				}
				v, ok := m.Value.(targetint.TargetInt)
				if !ok {
					t.Fatalf("member %s value is %T", m.Name, m.Value)
				}
				if want := x86.IntWidth(m.Type.IntKind); v.Width() != want {
					t.Errorf("member %s value width = %d, want %d", m.Name, v.Width(), want)
				}
				if v.IsSigned() != m.Type.Signed {
					t.Errorf("member %s value signedness = %v", m.Name, v.IsSigned())
				}
				if !v.Equal(tc.values[i].Convert(v.Prec(), v.IsSigned())) {
					t.Errorf("member %s value = %s, want %s", m.Name, v, tc.values[i])
				}
			}
		})
	}
}

func TestEvaluateEnumTypeFatal(t *testing.T) {
	cases := []struct {
		name   string
		values []targetint.TargetInt
		attrs  layout.EnumAttrs
		code   diag.Code
		at     string
	}{
		{"out of bounds", []targetint.TargetInt{targetint.FromInt64(-1), targetint.FromUint64(1 << 63)}, layout.EnumAttrs{},
			diag.EnumValueOutOfBounds, "B"},
		{"out of bounds after positive", []targetint.TargetInt{targetint.FromUint64(1 << 63), targetint.FromInt64(0), targetint.FromInt64(-5)}, layout.EnumAttrs{},
			diag.EnumValueOutOfBounds, "C"},
		{"exceeds mode", []targetint.TargetInt{targetint.FromInt64(1), targetint.FromInt64(300)}, layout.EnumAttrs{ModeWidth: 8},
			diag.EnumValueExceedsMode, "B"},
		{"negative exceeds mode", []targetint.TargetInt{targetint.FromInt64(255), targetint.FromInt64(-1)}, layout.EnumAttrs{ModeWidth: 8},
			diag.EnumValueExceedsMode, "B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := enumContent(tc.values...)
			bag := diag.NewBag(10)
			err := layout.EvaluateEnumType(context.Background(), x86, diag.NewBagReporter(bag), c, tc.attrs)

			var eerr *layout.EnumError
			if !errors.As(err, &eerr) {
				t.Fatalf("error = %v, want *EnumError", err)
			}
			if eerr.Code != tc.code || eerr.Enumerator != tc.at {
				t.Errorf("error = %s at %s, want %s at %s", eerr.Code, eerr.Enumerator, tc.code, tc.at)
			}
			if bag.Len() != 1 {
				t.Fatalf("diagnostics = %d, want 1", bag.Len())
			}
			d := bag.Items()[0]
			if d.Code != tc.code || d.Severity != diag.SevFatal {
				t.Errorf("diagnostic = %s %s", d.Severity, d.Code)
			}
			if c.IsEvaluated() {
				t.Errorf("content evaluated despite error")
			}
			for i, m := range c.Members {
				v := m.Value.(targetint.TargetInt)
				if v.Prec() != tc.values[i].Prec() || !v.Equal(tc.values[i]) {
					t.Errorf("member %s modified: %s", m.Name, v)
				}
			}
		})
	}
}

package layout_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"ccabi/internal/arch"
	"ccabi/internal/layout"
	"ccabi/internal/testkit"
	"ccabi/internal/types"
)

var x86 = arch.NewX86_64GCC48(arch.Config{})

type placement struct {
	offset uint64
	bitPos int
}

func layoutRecord(t *testing.T, union bool, attrs layout.RecordAttrs, opts layout.Options, c *types.RecordContent) {
	t.Helper()
	var err error
	if union {
		err = layout.LayoutUnion(context.Background(), x86, c, attrs, opts)
	} else {
		err = layout.LayoutStruct(context.Background(), x86, c, attrs, opts)
	}
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if err := testkit.CheckRecordInvariants(x86, c, union, attrs, opts); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func checkLayout(t *testing.T, c *types.RecordContent, size uint64, align int, want []placement) {
	t.Helper()
	if !c.IsSizeConstant() {
		t.Fatalf("size not constant")
	}
	if got := c.Size().MustUint64(); got != size {
		t.Errorf("size = %d, want %d", got, size)
	}
	if got := c.Alignment(); got != align {
		t.Errorf("alignment = %d, want %d", got, align)
	}
	if len(want) != len(c.Members) {
		t.Fatalf("%d placements for %d members", len(want), len(c.Members))
	}
	for i, m := range c.Members {
		off, ok := m.Offset()
		if !ok {
			t.Errorf("member %d (%s): offset not constant", i, m.Name)
			continue
		}
		got := placement{off.MustUint64(), m.BitPos()}
		if got != want[i] {
			t.Errorf("member %d (%s) at %+v, want %+v", i, m.Name, got, want[i])
		}
	}
}

func TestLayoutStruct(t *testing.T) {
	cases := []struct {
		name    string
		members []*types.Member
		attrs   layout.RecordAttrs
		opts    layout.Options
		size    uint64
		align   int
		want    []placement
	}{
		{
			name:    "padding",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("b", testkit.Int), testkit.Field("c", testkit.Char)},
			size:    12, align: 2,
			want: []placement{{0, 0}, {4, 0}, {8, 0}},
		},
		{
			name:    "double",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("d", testkit.Double)},
			size:    16, align: 3,
			want: []placement{{0, 0}, {8, 0}},
		},
		{
			name:    "long double and int128",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("ld", testkit.LDbl), testkit.Field("i", testkit.Int128)},
			size:    48, align: 4,
			want: []placement{{0, 0}, {16, 0}, {32, 0}},
		},
		{
			name:    "array and pointer",
			members: []*types.Member{testkit.Field("s", testkit.Arr(testkit.Short, 3)), testkit.Field("p", testkit.VoidP)},
			size:    16, align: 3,
			want: []placement{{0, 0}, {8, 0}},
		},
		{
			name:    "adjacent bitfields share a unit",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("b", testkit.Int, 4), testkit.Bits("c", testkit.Int, 4)},
			size:    4, align: 2,
			want: []placement{{0, 0}, {1, 0}, {1, 4}},
		},
		{
			name:    "bitfield crossing its unit moves to the next one",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("b", testkit.Int, 3), testkit.Bits("c", testkit.Int, 30)},
			size:    8, align: 2,
			want: []placement{{0, 0}, {1, 0}, {4, 0}},
		},
		{
			name:    "long long bitfield",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("b", testkit.LLong, 60)},
			size:    16, align: 3,
			want: []placement{{0, 0}, {8, 0}},
		},
		{
			name:    "bool bitfields",
			members: []*types.Member{testkit.Bits("a", types.Bool{}, 1), testkit.Bits("b", types.Bool{}, 1)},
			size:    1, align: 0,
			want: []placement{{0, 0}, {0, 1}},
		},
		{
			name:    "unnamed bitfield does not align the record",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("", testkit.Int, 3)},
			size:    2, align: 0,
			want: []placement{{0, 0}, {1, 0}},
		},
		{
			name:    "zero width bitfield",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("", testkit.Int, 0), testkit.Field("b", testkit.Char)},
			size:    5, align: 0,
			want: []placement{{0, 0}, {4, 0}, {4, 0}},
		},
		{
			name:    "zero width bitfield in packed struct",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("", testkit.Int, 0), testkit.Field("b", testkit.Char)},
			attrs:   layout.RecordAttrs{Packed: true},
			size:    5, align: 0,
			want: []placement{{0, 0}, {4, 0}, {4, 0}},
		},
		{
			name:    "packed",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("b", testkit.Int), testkit.Field("d", testkit.Double)},
			attrs:   layout.RecordAttrs{Packed: true},
			size:    13, align: 0,
			want: []placement{{0, 0}, {1, 0}, {5, 0}},
		},
		{
			name:    "packed bitfield may straddle",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("b", testkit.Int, 30)},
			attrs:   layout.RecordAttrs{Packed: true},
			size:    5, align: 0,
			want: []placement{{0, 0}, {1, 0}},
		},
		{
			name:    "record aligned attribute",
			members: []*types.Member{testkit.Field("a", testkit.Char)},
			attrs:   layout.RecordAttrs{Aligned: types.AlignLog2(4)},
			size:    16, align: 4,
			want: []placement{{0, 0}},
		},
		{
			name:    "packed and aligned",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("b", testkit.Int)},
			attrs:   layout.RecordAttrs{Packed: true, Aligned: types.AlignLog2(3)},
			size:    8, align: 3,
			want: []placement{{0, 0}, {1, 0}},
		},
		{
			name: "member aligned attribute",
			members: []*types.Member{
				testkit.Field("a", testkit.Char),
				{Name: "b", Type: testkit.Int, Aligned: types.AlignLog2(4)},
			},
			size: 32, align: 4,
			want: []placement{{0, 0}, {16, 0}},
		},
		{
			name: "member aligned attribute cannot lower alignment",
			members: []*types.Member{
				testkit.Field("a", testkit.Char),
				{Name: "b", Type: testkit.Int, Aligned: types.AlignLog2(0)},
			},
			size: 8, align: 2,
			want: []placement{{0, 0}, {4, 0}},
		},
		{
			name: "packed member",
			members: []*types.Member{
				testkit.Field("a", testkit.Char),
				{Name: "b", Type: testkit.Int, Packed: true},
				testkit.Field("c", testkit.Short),
			},
			size: 8, align: 1,
			want: []placement{{0, 0}, {1, 0}, {6, 0}},
		},
		{
			name:    "pack_struct=1",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("b", testkit.Int)},
			opts:    layout.Options{MaxFieldAlign: types.AlignLog2(0)},
			size:    5, align: 0,
			want: []placement{{0, 0}, {1, 0}},
		},
		{
			name:    "pack_struct=2",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("b", testkit.Double)},
			opts:    layout.Options{MaxFieldAlign: types.AlignLog2(1)},
			size:    10, align: 1,
			want: []placement{{0, 0}, {2, 0}},
		},
		{
			name: "pack_struct caps explicit member alignment",
			members: []*types.Member{
				testkit.Field("a", testkit.Char),
				{Name: "b", Type: testkit.Int, Aligned: types.AlignLog2(4)},
			},
			opts: layout.Options{MaxFieldAlign: types.AlignLog2(1)},
			size: 6, align: 1,
			want: []placement{{0, 0}, {2, 0}},
		},
		{
			name:    "pack_struct skips the unit span check",
			members: []*types.Member{testkit.Field("a", testkit.Char), testkit.Bits("b", testkit.Int, 30)},
			opts:    layout.Options{MaxFieldAlign: types.AlignLog2(0)},
			size:    5, align: 0,
			want: []placement{{0, 0}, {1, 0}},
		},
		{
			name:    "flexible array member",
			members: []*types.Member{testkit.Field("c", testkit.Char), testkit.Field("d", types.IncompleteArrayOf(testkit.Int))},
			size:    4, align: 2,
			want: []placement{{0, 0}, {4, 0}},
		},
		{
			name:    "empty",
			members: nil,
			size:    0, align: 0,
			want: []placement{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testkit.Content(tc.members...)
			layoutRecord(t, false, tc.attrs, tc.opts, c)
			checkLayout(t, c, tc.size, tc.align, tc.want)
		})
	}
}

func TestLayoutUnion(t *testing.T) {
	cases := []struct {
		name    string
		members []*types.Member
		attrs   layout.RecordAttrs
		size    uint64
		align   int
	}{
		{"max member", []*types.Member{testkit.Field("a", testkit.Char), testkit.Field("b", testkit.Int), testkit.Field("c", testkit.Double)}, layout.RecordAttrs{}, 8, 3},
		{"padded to alignment", []*types.Member{testkit.Field("a", testkit.Arr(testkit.Char, 5)), testkit.Field("b", testkit.Int)}, layout.RecordAttrs{}, 8, 2},
		{"bitfield", []*types.Member{testkit.Bits("a", testkit.Int, 9)}, layout.RecordAttrs{}, 4, 2},
		{"packed", []*types.Member{testkit.Field("a", testkit.Arr(testkit.Char, 5)), testkit.Field("b", testkit.Int)}, layout.RecordAttrs{Packed: true}, 5, 0},
		{"aligned", []*types.Member{testkit.Field("a", testkit.Char)}, layout.RecordAttrs{Aligned: types.AlignLog2(3)}, 8, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testkit.Content(tc.members...)
			layoutRecord(t, true, tc.attrs, layout.Options{}, c)
			want := make([]placement, len(tc.members))
			checkLayout(t, c, tc.size, tc.align, want)
		})
	}
}

func TestLayoutAnonymousMember(t *testing.T) {
	inner := testkit.Content(testkit.Field("b", testkit.Char), testkit.Field("c", testkit.Long))
	layoutRecord(t, true, layout.RecordAttrs{}, layout.Options{}, inner)

	outer := testkit.Content(
		testkit.Field("a", testkit.Int),
		testkit.Field("", types.Record{Union: true, Content: inner}),
		testkit.Field("d", testkit.Char),
	)
	layoutRecord(t, false, layout.RecordAttrs{}, layout.Options{}, outer)
	checkLayout(t, outer, 24, 3, []placement{{0, 0}, {8, 0}, {16, 0}})

	path, ok := outer.Lookup("c")
	if !ok || len(path) != 2 || path[1].Name != "c" {
		t.Fatalf("Lookup(c) = %v, %v", path, ok)
	}
	off, bitPos, ok := outer.OffsetOf("c")
	if !ok || off.MustUint64() != 8 || bitPos != 0 {
		t.Fatalf("OffsetOf(c) = %v.%d, %v", off, bitPos, ok)
	}
}

func TestLayoutVariableSize(t *testing.T) {
	c := testkit.Content(
		testkit.Field("n", testkit.Int),
		testkit.Field("v", types.VLAOf(testkit.Int)),
		testkit.Field("after", testkit.Char),
	)
	if err := layout.LayoutStruct(context.Background(), x86, c, layout.RecordAttrs{}, layout.Options{}); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if c.IsSizeConstant() {
		t.Fatalf("size should not be constant")
	}
	if _, ok := c.Members[1].Offset(); !ok {
		t.Errorf("VLA member offset should be constant")
	}
	if _, ok := c.Members[2].Offset(); ok {
		t.Errorf("member after VLA should not have a constant offset")
	}
	if got := c.Alignment(); got != 2 {
		t.Errorf("alignment = %d, want 2", got)
	}
}

func TestLayoutErrors(t *testing.T) {
	incompleteEnum := types.Enum{Tag: "e", Content: &types.EnumContent{}}
	cases := []struct {
		name    string
		union   bool
		members []*types.Member
		kind    layout.LayoutErrorKind
	}{
		{"flexible array not last", false, []*types.Member{testkit.Field("d", types.IncompleteArrayOf(testkit.Int)), testkit.Field("n", testkit.Int)}, layout.LayoutErrIncompleteMember},
		{"flexible array in union", true, []*types.Member{testkit.Field("d", types.IncompleteArrayOf(testkit.Int))}, layout.LayoutErrIncompleteMember},
		{"incomplete struct", false, []*types.Member{testkit.Field("s", types.Record{Tag: "s"})}, layout.LayoutErrIncompleteMember},
		{"too wide", false, []*types.Member{testkit.Bits("b", testkit.Int, 33)}, layout.LayoutErrBitfieldWidth},
		{"negative width", false, []*types.Member{testkit.Bits("b", testkit.Int, -1)}, layout.LayoutErrBitfieldWidth},
		{"named zero width", false, []*types.Member{testkit.Bits("b", testkit.Int, 0)}, layout.LayoutErrNamedZeroWidth},
		{"incomplete enum base", false, []*types.Member{testkit.Bits("b", incompleteEnum, 1)}, layout.LayoutErrBitfieldBase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testkit.Content(tc.members...)
			var err error
			if tc.union {
				err = layout.LayoutUnion(context.Background(), x86, c, layout.RecordAttrs{}, layout.Options{})
			} else {
				err = layout.LayoutStruct(context.Background(), x86, c, layout.RecordAttrs{}, layout.Options{})
			}
			var lerr *layout.LayoutError
			if !errors.As(err, &lerr) {
				t.Fatalf("error = %v, want *LayoutError", err)
			}
			if lerr.Kind != tc.kind {
				t.Errorf("kind = %d, want %d (%v)", lerr.Kind, tc.kind, lerr)
			}
			if c.IsLaidOut() {
				t.Errorf("content laid out despite error")
			}
		})
	}
}

func TestLayoutTwicePanics(t *testing.T) {
	c := testkit.Content(testkit.Field("a", testkit.Int))
	layoutRecord(t, false, layout.RecordAttrs{}, layout.Options{}, c)
	defer func() {
		if recover() == nil {
			t.Fatalf("second layout did not panic")
		}
	}()
	_ = layout.LayoutStruct(context.Background(), x86, c, layout.RecordAttrs{}, layout.Options{})
}

func TestLayoutRandomInvariants(t *testing.T) {
	objects := []types.ObjectType{
		testkit.Char, testkit.Short, testkit.Int, testkit.Long, testkit.Int128,
		testkit.Double, testkit.LDbl, testkit.VoidP, testkit.Arr(testkit.Char, 3),
		types.Float{FloatKind: types.FloatFloat, Complex: true},
	}
	bases := []types.IntegerType{testkit.Char, testkit.Short, testkit.Int, testkit.LLong, types.Bool{}}

	rng := rand.New(rand.NewPCG(1, 2))
	for iter := range 500 {
		n := 1 + rng.IntN(8)
		members := make([]*types.Member, 0, n)
		for range n {
			if rng.IntN(3) == 0 {
				base := bases[rng.IntN(len(bases))]
				width := rng.IntN(base.Width(x86) + 1)
				name := "f"
				if width == 0 || rng.IntN(4) == 0 {
					name = ""
				}
				members = append(members, testkit.Bits(name, base, width))
				continue
			}
			m := testkit.Field("m", objects[rng.IntN(len(objects))])
			if rng.IntN(6) == 0 {
				m.Aligned = types.AlignLog2(rng.IntN(5))
			}
			m.Packed = rng.IntN(8) == 0
			members = append(members, m)
		}
		attrs := layout.RecordAttrs{Packed: rng.IntN(4) == 0}
		var opts layout.Options
		if rng.IntN(4) == 0 {
			opts.MaxFieldAlign = types.AlignLog2(rng.IntN(4))
		}
		union := rng.IntN(4) == 0

		c := testkit.Content(members...)
		var err error
		if union {
			err = layout.LayoutUnion(context.Background(), x86, c, attrs, opts)
		} else {
			err = layout.LayoutStruct(context.Background(), x86, c, attrs, opts)
		}
		if err != nil {
			t.Fatalf("iteration %d: layout: %v", iter, err)
		}
		if err := testkit.CheckRecordInvariants(x86, c, union, attrs, opts); err != nil {
			t.Fatalf("iteration %d: %v", iter, err)
		}
	}
}

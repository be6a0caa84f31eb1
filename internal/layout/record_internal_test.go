package layout

import "testing"

func TestExcessUnitSpan(t *testing.T) {
	cases := []struct {
		byteOff, bitOff, size uint64
		alignLog2             int
		typeSize              uint64
		want                  bool
	}{
		{0, 0, 32, 5, 32, false},
		{1, 0, 24, 5, 32, false},
		{1, 0, 25, 5, 32, true},
		{1, 3, 30, 5, 32, true},
		{4, 0, 32, 5, 32, false},
		{7, 7, 1, 3, 8, false},
		{1, 0, 60, 6, 64, true},
		{^uint64(0) / 8, 0, 8, 3, 8, false},
	}
	for _, tc := range cases {
		if got := excessUnitSpan(tc.byteOff, tc.bitOff, tc.size, tc.alignLog2, tc.typeSize); got != tc.want {
			t.Errorf("excessUnitSpan(%d, %d, %d, %d, %d) = %v, want %v",
				tc.byteOff, tc.bitOff, tc.size, tc.alignLog2, tc.typeSize, got, tc.want)
		}
	}
}

func TestEnumWidth(t *testing.T) {
	cases := []struct {
		need   int
		packed bool
		want   int
	}{
		{0, false, 32}, {32, false, 32}, {33, false, 64},
		{0, true, 8}, {9, true, 16}, {17, true, 32}, {64, true, 64},
	}
	for _, tc := range cases {
		if got := enumWidth(tc.need, tc.packed); got != tc.want {
			t.Errorf("enumWidth(%d, %v) = %d, want %d", tc.need, tc.packed, got, tc.want)
		}
	}
}

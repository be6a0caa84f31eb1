package targetint_test

import (
	"errors"
	"math"
	"math/big"
	"math/rand/v2"
	"testing"

	"ccabi/internal/targetint"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in     string
		prec   int
		signed bool
		want   string
		err    bool
	}{
		{"0", 31, true, "0", false},
		{"-1", 31, true, "-1", false},
		{"0x7fff_ffff", 31, true, "2147483647", false},
		{"0x8000_0000", 31, true, "", true},
		{"-0x8000_0000", 31, true, "-2147483648", false},
		{"-2147483649", 31, true, "", true},
		{"0b1010", 8, false, "10", false},
		{"017", 8, false, "15", false},
		{"255u", 8, false, "255", false},
		{"256", 8, false, "", true},
		{"-1", 8, false, "", true},
		{"0x1_0000_0001", 64, false, "4294967297", false},
		{"-170141183460469231731687303715884105728", 127, true, "-170141183460469231731687303715884105728", false},
		{"", 31, true, "", true},
		{"12z", 31, true, "", true},
	}
	for _, tc := range cases {
		v, err := targetint.Parse(tc.in, tc.prec, tc.signed)
		if (err != nil) != tc.err {
			t.Errorf("Parse(%q, %d, %v) error = %v", tc.in, tc.prec, tc.signed, err)
			continue
		}
		if err != nil {
			continue
		}
		if got := v.String(); got != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
		}
		if v.Prec() != tc.prec || v.IsSigned() != tc.signed {
			t.Errorf("Parse(%q) type = (%d, %v)", tc.in, v.Prec(), v.IsSigned())
		}
	}
}

func TestMinRequiredWidth(t *testing.T) {
	cases := []struct {
		v    int64
		want int
	}{
		{0, 0}, {1, 1}, {2, 2}, {255, 8}, {256, 9},
		{-1, 1}, {-2, 2}, {-128, 8}, {-129, 9},
		{math.MinInt64, 64}, {math.MaxInt64, 63},
	}
	for _, tc := range cases {
		if got := targetint.FromInt64(tc.v).MinRequiredWidth(); got != tc.want {
			t.Errorf("MinRequiredWidth(%d) = %d, want %d", tc.v, got, tc.want)
		}
	}
	if got := targetint.FromUint64(math.MaxUint64).MinRequiredWidth(); got != 64 {
		t.Errorf("MinRequiredWidth(MaxUint64) = %d", got)
	}
}

func TestConvert(t *testing.T) {
	minus1 := targetint.FromInt64(-1)
	if got := minus1.Convert(8, false).String(); got != "255" {
		t.Errorf("(unsigned char)-1 = %s", got)
	}
	if got := minus1.Convert(127, true).String(); got != "-1" {
		t.Errorf("(__int128)-1 = %s", got)
	}
	if got := targetint.FromUint64(0x1ff).Convert(7, true).String(); got != "-1" {
		t.Errorf("(signed char)0x1ff = %s", got)
	}
	if _, err := minus1.ConvertChecked(32, false); !errors.Is(err, targetint.ErrOverflow) {
		t.Errorf("ConvertChecked(-1 -> unsigned) error = %v", err)
	}
	if v, err := targetint.FromUint64(200).ConvertChecked(7, true); err == nil {
		t.Errorf("ConvertChecked(200 -> signed char) = %s", v)
	}
	v, err := targetint.FromInt64(-5).ConvertChecked(15, true)
	if err != nil || v.String() != "-5" || v.Width() != 16 {
		t.Errorf("ConvertChecked(-5 -> short) = %s, %v", v, err)
	}
	if i, err := v.Int64(); err != nil || i != -5 {
		t.Errorf("Int64() = %d, %v", i, err)
	}
	if _, err := v.Uint64(); !errors.Is(err, targetint.ErrOverflow) {
		t.Errorf("Uint64() of negative error = %v", err)
	}
}

func TestText(t *testing.T) {
	v := targetint.FromInt64(-255)
	for base, want := range map[int]string{2: "-11111111", 8: "-377", 16: "-ff", 36: "-73"} {
		got, err := v.Text(base)
		if err != nil || got != want {
			t.Errorf("Text(%d) = %q, %v, want %q", base, got, err, want)
		}
	}
	if _, err := v.Text(1); err == nil {
		t.Errorf("Text(1) accepted")
	}
}

// Results outside the int64 range must overflow.
func TestSignedArithmetic(t *testing.T) {
	type op struct {
		name string
		ti   func(a, b targetint.TargetInt) (targetint.TargetInt, error)
		big  func(a, b *big.Int) *big.Int
		skip func(a, b int64) bool
	}
	ops := []op{
		{"+", targetint.TargetInt.Add, func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }, nil},
		{"-", targetint.TargetInt.Sub, func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }, nil},
		{"*", targetint.TargetInt.Mul, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }, nil},
		{"/", targetint.TargetInt.Div, func(a, b *big.Int) *big.Int { return new(big.Int).Quo(a, b) }, func(_, b int64) bool { return b == 0 }},
		{"%", targetint.TargetInt.Mod, func(a, b *big.Int) *big.Int { return new(big.Int).Rem(a, b) }, func(a, b int64) bool { return b == 0 || (a == math.MinInt64 && b == -1) }},
	}
	minInt := big.NewInt(math.MinInt64)
	maxInt := big.NewInt(math.MaxInt64)

	rng := rand.New(rand.NewPCG(3, 4))
	operand := func() int64 {
		switch rng.IntN(5) {
		case 0:
			return []int64{0, 1, -1, math.MinInt64, math.MaxInt64}[rng.IntN(5)]
		case 1:
			return rng.Int64N(1000) - 500
		default:
			return int64(rng.Uint64()) //nolint:gosec // G115: any bit pattern is a valid operand.
		}
	}
	for range 2000 {
		a, b := operand(), operand()
		for _, o := range ops {
			if o.skip != nil && o.skip(a, b) {
				continue
			}
			want := o.big(big.NewInt(a), big.NewInt(b))
			got, err := o.ti(targetint.FromInt64(a), targetint.FromInt64(b))
			if want.Cmp(minInt) < 0 || want.Cmp(maxInt) > 0 {
				if !errors.Is(err, targetint.ErrOverflow) {
					t.Fatalf("%d %s %d: error = %v, want overflow", a, o.name, b, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("%d %s %d: %v", a, o.name, b, err)
			}
			if got.String() != want.String() {
				t.Fatalf("%d %s %d = %s, want %s", a, o.name, b, got, want)
			}
		}
	}
}

func TestUnsignedWraps(t *testing.T) {
	maxU := targetint.FromUint64(math.MaxUint64)
	one := targetint.FromUint64(1)
	if v, err := maxU.Add(one); err != nil || !v.IsZero() {
		t.Errorf("MaxUint64+1 = %s, %v", v, err)
	}
	if v, err := targetint.FromUint64(0).Sub(one); err != nil || !v.Equal(maxU) {
		t.Errorf("0-1 = %s, %v", v, err)
	}
	if v, err := maxU.Mul(maxU); err != nil || !v.Equal(one) {
		t.Errorf("MaxUint64*MaxUint64 = %s, %v", v, err)
	}
	if v, err := one.Neg(); err != nil || !v.Equal(maxU) {
		t.Errorf("-1u = %s, %v", v, err)
	}
	if _, err := one.Div(targetint.FromUint64(0)); !errors.Is(err, targetint.ErrDivByZero) {
		t.Errorf("1/0 error = %v", err)
	}
}

func TestBitwiseAndShifts(t *testing.T) {
	a := targetint.FromInt64(0b1100)
	b := targetint.FromInt64(0b1010)
	if got := a.And(b).String(); got != "8" {
		t.Errorf("and = %s", got)
	}
	if got := a.Or(b).String(); got != "14" {
		t.Errorf("or = %s", got)
	}
	if got := a.Xor(b).String(); got != "6" {
		t.Errorf("xor = %s", got)
	}
	if got := a.Not().String(); got != "-13" {
		t.Errorf("not = %s", got)
	}

	if v, err := targetint.FromInt64(1).Shl(62); err != nil || v.String() != "4611686018427387904" {
		t.Errorf("1<<62 = %s, %v", v, err)
	}
	if _, err := targetint.FromInt64(1).Shl(63); !errors.Is(err, targetint.ErrOverflow) {
		t.Errorf("1<<63 error = %v", err)
	}
	if _, err := targetint.FromInt64(1).Shl(64); !errors.Is(err, targetint.ErrOverflow) {
		t.Errorf("1<<64 error = %v", err)
	}
	if v, err := targetint.FromUint64(1).Shl(63); err != nil || v.String() != "9223372036854775808" {
		t.Errorf("1u<<63 = %s, %v", v, err)
	}
	if v, err := targetint.FromInt64(-16).Shr(2); err != nil || v.String() != "-4" {
		t.Errorf("-16>>2 = %s, %v", v, err)
	}
	if v, err := targetint.FromUint64(math.MaxUint64).Shr(60); err != nil || v.String() != "15" {
		t.Errorf("MaxUint64>>60 = %s, %v", v, err)
	}
}

func TestNegMostNegative(t *testing.T) {
	if _, err := targetint.FromInt64(math.MinInt64).Neg(); !errors.Is(err, targetint.ErrOverflow) {
		t.Errorf("-MinInt64 error = %v", err)
	}
	v, err := targetint.FromInt64(-7).Neg()
	if err != nil || v.String() != "7" {
		t.Errorf("-(-7) = %s, %v", v, err)
	}
}

func TestMixedOperandsPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("mixed operand types did not panic")
		}
	}()
	_, _ = targetint.FromInt64(1).Add(targetint.FromUint64(1))
}

package mpa_test

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"ccabi/internal/mpa"
)

func TestStringRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	values := []mpa.Limbs{mpa.FromUint64(0), mpa.New(1), mpa.New(all), mpa.New(0, 1), mpa.New(all, all, all)}
	for i := 0; i < 40; i++ {
		values = append(values, randLimbs(rng, 1+rng.IntN(4)))
	}
	for base := mpa.MinBase; base <= mpa.MaxBase; base++ {
		for _, v := range values {
			s, err := v.ToString(base)
			if err != nil {
				t.Fatalf("ToString(%d): %v", base, err)
			}
			back, err := mpa.FromString(s, base)
			if err != nil {
				t.Fatalf("FromString(%q, %d): %v", s, base, err)
			}
			if !back.Equal(v) {
				t.Fatalf("base %d: %#v -> %q -> %#v", base, v, s, back)
			}
			if got, want := s, toBig(v).Text(base); got != want {
				t.Fatalf("base %d: ToString = %q, want %q", base, got, want)
			}
		}
	}
}

func TestFromStringDigits(t *testing.T) {
	v, err := mpa.FromString("DeadBeef", 16)
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if v.MustUint64() != 0xdeadbeef {
		t.Fatalf("got %s", v)
	}
	v, err = mpa.FromString("18446744073709551616", 10)
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if v.Len() != 2 || v.Limb(0) != 0 || v.Limb(1) != 1 {
		t.Fatalf("2^64 = %#v", v)
	}
	if v, err = mpa.FromString("", 10); err != nil || !v.IsZero() {
		t.Fatalf("empty string = %v, %v", v, err)
	}
	if v = mpa.MustFromString("z", 36); v.MustUint64() != 35 {
		t.Fatalf("z in base 36 = %s", v)
	}
}

func TestFromStringErrors(t *testing.T) {
	cases := []struct {
		in   string
		base int
		want error
	}{
		{"12-3", 10, mpa.ErrUnrecognizedDigit},
		{"1 2", 10, mpa.ErrUnrecognizedDigit},
		{"129", 8, mpa.ErrDigitInvalidForBase},
		{"g", 16, mpa.ErrDigitInvalidForBase},
		{"1", 1, mpa.ErrInvalidBase},
		{"1", 37, mpa.ErrInvalidBase},
	}
	for _, tc := range cases {
		_, err := mpa.FromString(tc.in, tc.base)
		if !errors.Is(err, tc.want) {
			t.Errorf("FromString(%q, %d) error = %v, want %v", tc.in, tc.base, err, tc.want)
		}
		if !errors.Is(err, mpa.ErrParse) {
			t.Errorf("FromString(%q, %d) error %v does not wrap ErrParse", tc.in, tc.base, err)
		}
	}
}

func TestFormatting(t *testing.T) {
	v := mpa.New(0x10, 0x2)
	if got := v.String(); got != "36893488147419103248" {
		t.Fatalf("String() = %q", got)
	}
	if got := v.GoString(); got != "mpa.Limbs{0x2, 0x10}" {
		t.Fatalf("GoString() = %q", got)
	}
	if _, err := v.ToString(40); !errors.Is(err, mpa.ErrInvalidBase) {
		t.Fatalf("expected ErrInvalidBase, got %v", err)
	}
	if got, _ := (mpa.Limbs{}).ToString(2); got != "0" {
		t.Fatalf("empty limbs formatted as %q", got)
	}
	if got, _ := mpa.New(255).ToString(2); got != strings.Repeat("1", 8) {
		t.Fatalf("255 in base 2 = %q", got)
	}
}

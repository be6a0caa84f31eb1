package fuzztests

import (
	"testing"

	"ccabi/internal/mpa"
	"ccabi/internal/targetint"
)

func FuzzTargetIntParse(f *testing.F) {
	for _, seed := range []string{"0", "-1", "0x7fff_ffff", "0b1010", "017", "18446744073709551615ul", "-0x8000000000000000", "+", "0x", "9_"} {
		f.Add(seed, uint8(63), true)
	}
	f.Fuzz(func(t *testing.T, text string, prec uint8, signed bool) {
		if len(text) > 256 {
			text = text[:256]
		}
		p := int(prec)%200 + 1
		v, err := targetint.Parse(text, p, signed)
		if err != nil {
			return
		}
		if v.MinRequiredWidth() > v.Width() {
			t.Fatalf("%q: min width %d exceeds %d", text, v.MinRequiredWidth(), v.Width())
		}
		dec, err := v.Text(10)
		if err != nil {
			t.Fatalf("%q: Text: %v", text, err)
		}
		back, err := targetint.Parse(dec, p, signed)
		if err != nil {
			t.Fatalf("%q: reparse of %q: %v", text, dec, err)
		}
		if !back.Equal(v) {
			t.Fatalf("%q: reparse of %q gave %s", text, dec, back)
		}
		if !v.Convert(p+64, true).Convert(p, signed).Equal(v) {
			t.Fatalf("%q: widening and narrowing changed the value", text)
		}
	})
}

func FuzzLimbsFromString(f *testing.F) {
	f.Add("ff", uint8(16))
	f.Add("777", uint8(8))
	f.Add("zz", uint8(36))
	f.Add("", uint8(10))
	f.Fuzz(func(t *testing.T, digits string, base uint8) {
		if len(digits) > 256 {
			digits = digits[:256]
		}
		b := int(base)%35 + 2
		v, err := mpa.FromString(digits, b)
		if err != nil {
			return
		}
		s, err := v.ToString(b)
		if err != nil {
			t.Fatalf("ToString: %v", err)
		}
		back, err := mpa.FromString(s, b)
		if err != nil || !back.Equal(v) {
			t.Fatalf("%q base %d: round trip through %q failed (%v)", digits, b, s, err)
		}
	})
}

package extract

import (
	"encoding/json"
	"testing"
)

func TestParseAmount_Strings(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"$129", 129, true},
		{"USD 129", 129, true},
		{"129.00", 129, true},
		{"129.99", 129, true},
		{"129 per night", 129, true},
		{"$1,299 per night", 1299, true},
		{"from $89", 89, true},
		{"", 0, false},
		{"call for rates", 0, false},
	}

	for _, c := range cases {
		got, ok := ParseAmount(c.in)
		if ok != c.ok {
			t.Fatalf("ParseAmount(%q): ok = %v, want %v", c.in, ok, c.ok)
		}
		if got != c.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseAmount_Numbers(t *testing.T) {
	if got, ok := ParseAmount(float64(142.7)); !ok || got != 142 {
		t.Fatalf("float64: got %d, %v", got, ok)
	}
	if got, ok := ParseAmount(150); !ok || got != 150 {
		t.Fatalf("int: got %d, %v", got, ok)
	}
	if got, ok := ParseAmount(int64(88)); !ok || got != 88 {
		t.Fatalf("int64: got %d, %v", got, ok)
	}
	if got, ok := ParseAmount(json.Number("119.5")); !ok || got != 119 {
		t.Fatalf("json.Number: got %d, %v", got, ok)
	}
	if _, ok := ParseAmount(nil); ok {
		t.Fatalf("nil should not parse")
	}
	if _, ok := ParseAmount([]string{"129"}); ok {
		t.Fatalf("slice should not parse")
	}
}

func TestBounds_Plausible(t *testing.T) {
	b := DefaultBounds

	if !b.Plausible(40) || !b.Plausible(600) {
		t.Fatalf("bounds should be inclusive")
	}
	if b.Plausible(39) || b.Plausible(601) {
		t.Fatalf("out-of-range values should be rejected")
	}
	if b.Plausible(0) {
		t.Fatalf("zero should be rejected")
	}
}

func TestBounds_PlausibleAmount(t *testing.T) {
	b := Bounds{Min: 40, Max: 600}

	if got, ok := b.PlausibleAmount("$145"); !ok || got != 145 {
		t.Fatalf("got %d, %v", got, ok)
	}
	// Parses fine but fails plausibility.
	if _, ok := b.PlausibleAmount("$12"); ok {
		t.Fatalf("implausible value should be rejected")
	}
	if _, ok := b.PlausibleAmount("$1,200"); ok {
		t.Fatalf("implausible value should be rejected")
	}
}

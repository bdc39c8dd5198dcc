package identity

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Comfort Inn Beckley", "comfort inn beckley"},
		{"Comfort Inn & Suites Beckley", "comfort inn beckley"},
		{"Country Inn and Suites", "country inn"},
		{"  Hampton Inn.  ", "hampton inn"},
		{"Best Western Plus Hotel & Suites", "best western plus hotel"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestHotelKey(t *testing.T) {
	if got := HotelKey("Comfort Inn Beckley"); got != "comfort_inn_beckley" {
		t.Fatalf("got %q", got)
	}
	// Suffix variants collapse to the same key.
	if HotelKey("Comfort Inn & Suites Beckley") != HotelKey("Comfort Inn Beckley") {
		t.Fatalf("suffix variants should share a key")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("Comfort Inn Beckley", "Beckley")
	b := Fingerprint("comfort inn & suites beckley", "BECKLEY")
	if a != b {
		t.Fatalf("equivalent identities should fingerprint equal: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if a == Fingerprint("Comfort Inn Beckley", "Princeton") {
		t.Fatalf("different cities must fingerprint differently")
	}
}

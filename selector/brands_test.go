package selector

import "testing"

func TestDetectProviderGroup(t *testing.T) {
	cases := []struct{ ctx, want string }{
		{"Hilton.com", "brand_hilton"},
		{"Hampton Inn Beckley", "brand_hilton"},
		{"Tru by Hilton", "brand_hilton"},
		{"ChoiceHotels.com", "brand_choice"},
		{"Comfort Inn", "brand_choice"},
		{"Marriott Bonvoy", "brand_marriott"},
		{"Courtyard by Marriott", "brand_marriott"},
		{"Best Western", "brand_bw"},
		{"Country Inn & Suites", "brand_radisson"},
		{"Expedia.com", "ota_expedia"},
		{"Hotels.com", "ota_expedia"},
		{"Booking.com", "ota_booking"},
		{"Priceline", "ota_booking"},
		{"Some Random Travel Site", GroupOther},
		{"", GroupOther},
	}

	for _, c := range cases {
		if got := DetectProviderGroup(c.ctx); got != c.want {
			t.Fatalf("DetectProviderGroup(%q) = %q, want %q", c.ctx, got, c.want)
		}
	}
}

// The tru pattern is word-bounded so ordinary words containing the
// substring do not classify as Hilton.
func TestDetectProviderGroup_TruWordBoundary(t *testing.T) {
	if got := DetectProviderGroup("True Value Travel"); got == "brand_hilton" {
		t.Fatalf("'true' must not match the tru pattern")
	}
	if got := DetectProviderGroup("Tru Beckley"); got != "brand_hilton" {
		t.Fatalf("standalone tru should match, got %q", got)
	}
}

func TestMatchesBrand(t *testing.T) {
	if !MatchesBrand("ChoiceHotels.com", "brand_choice") {
		t.Fatalf("expected match")
	}
	if MatchesBrand("Expedia.com", "brand_choice") {
		t.Fatalf("expected no match")
	}
	if MatchesBrand("ChoiceHotels.com", "") {
		t.Fatalf("empty group matches nothing")
	}
	if MatchesBrand("ChoiceHotels.com", "brand_unknown") {
		t.Fatalf("unknown group matches nothing")
	}
}

func TestKnownGroup(t *testing.T) {
	for _, name := range []string{"brand_choice", "brand_hilton", "brand_marriott", "brand_bw", "brand_radisson", "ota_expedia", "ota_booking"} {
		if !KnownGroup(name) {
			t.Fatalf("expected %s to be known", name)
		}
	}
	if KnownGroup("brand_hyatt") {
		t.Fatalf("unexpected group")
	}
	if KnownGroup(GroupOther) {
		t.Fatalf("other is a catch-all, not a configured group")
	}
}

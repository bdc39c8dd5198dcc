package extract

import (
	"testing"

	"github.com/amills-vpmgmt/vpmgmt-rates/models"
)

func TestExtractOffers_DualShapeRateObject(t *testing.T) {
	rec := Record{
		"name": "Comfort Inn Beckley",
		"rate_per_night": map[string]interface{}{
			"extracted_before_taxes_fees": float64(119),
			"lowest":                      "$134",
		},
	}

	offers := ExtractOffers(rec, models.SourceProperties, DefaultBounds)
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	if offers[0].Price != 119 || offers[0].Basis != models.BasisNightlyBeforeTax {
		t.Fatalf("expected before-tax 119 first, got %d (%s)", offers[0].Price, offers[0].Basis)
	}
	if offers[1].Price != 134 || offers[1].Basis != models.BasisNightlyUnknown {
		t.Fatalf("expected unknown-basis 134, got %d (%s)", offers[1].Price, offers[1].Basis)
	}
}

func TestExtractOffers_ScalarRateField(t *testing.T) {
	rec := Record{
		"name":           "Hampton Inn",
		"rate_per_night": "$142",
	}

	offers := ExtractOffers(rec, models.SourceProperties, DefaultBounds)
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}
	if offers[0].Price != 142 || offers[0].Basis != models.BasisNightlyUnknown {
		t.Fatalf("got %d (%s)", offers[0].Price, offers[0].Basis)
	}
}

func TestExtractOffers_LegacyFlatFields(t *testing.T) {
	rec := Record{
		"name":                "Quality Inn",
		"price":               "$99",
		"rate_per_night_low":  float64(89),
		"rate_per_night_high": float64(109),
	}

	offers := ExtractOffers(rec, models.SourceProperties, DefaultBounds)
	if len(offers) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(offers))
	}
	for _, o := range offers {
		if o.Basis != models.BasisNightlyUnknown {
			t.Fatalf("legacy fields carry unknown basis, got %s", o.Basis)
		}
	}
}

func TestExtractOffers_PricesListInheritsContext(t *testing.T) {
	rec := Record{
		"name": "Courtyard Beckley",
		"prices": []interface{}{
			map[string]interface{}{
				"source":         "Marriott.com",
				"rate_plan":      "Member rate, non-refundable",
				"rate_per_night": map[string]interface{}{"extracted_lowest": float64(125)},
			},
			map[string]interface{}{
				"source": "Expedia.com",
				"price":  "$139",
			},
		},
	}

	offers := ExtractOffers(rec, models.SourceProperties, DefaultBounds)
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	first := offers[0]
	if first.Price != 125 {
		t.Fatalf("expected 125, got %d", first.Price)
	}
	// Parent name plus entry fields, joined in order.
	want := "Courtyard Beckley | Marriott.com | Member rate, non-refundable"
	if first.ProviderCtx != want {
		t.Fatalf("context = %q, want %q", first.ProviderCtx, want)
	}
	if first.Member == nil || !*first.Member {
		t.Fatalf("expected member offer")
	}
	if first.Refundable == nil || *first.Refundable {
		t.Fatalf("expected non-refundable offer")
	}

	second := offers[1]
	if second.Price != 139 {
		t.Fatalf("expected 139, got %d", second.Price)
	}
	if second.Member == nil || *second.Member {
		t.Fatalf("expected public offer")
	}
	if second.Refundable != nil {
		t.Fatalf("expected unknown refundability")
	}
}

func TestExtractOffers_ImplausibleDropped(t *testing.T) {
	rec := Record{
		"name":           "Sleep Inn",
		"rate_per_night": "$12",
		"price":          "$5,000",
	}

	offers := ExtractOffers(rec, models.SourceProperties, DefaultBounds)
	if len(offers) != 0 {
		t.Fatalf("expected no offers, got %d", len(offers))
	}
}

func TestExtractOffers_AdShape(t *testing.T) {
	rec := Record{
		"name":            "Best Western Beckley",
		"source":          "Booking.com",
		"extracted_price": float64(117),
		"price":           "$117",
		// Rate fields are a property shape; ads must ignore them.
		"rate_per_night": map[string]interface{}{"extracted_lowest": float64(95)},
	}

	offers := ExtractOffers(rec, models.SourceAds, DefaultBounds)
	if len(offers) != 2 {
		t.Fatalf("expected 2 ad offers, got %d", len(offers))
	}
	for _, o := range offers {
		if o.Price != 117 {
			t.Fatalf("expected 117, got %d", o.Price)
		}
		if o.Source != models.SourceAds {
			t.Fatalf("expected ad source, got %s", o.Source)
		}
	}
}

func TestExtractOffers_NilRecord(t *testing.T) {
	if offers := ExtractOffers(nil, models.SourceProperties, DefaultBounds); offers != nil {
		t.Fatalf("expected nil, got %v", offers)
	}
}

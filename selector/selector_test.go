package selector

import (
	"reflect"
	"testing"

	"github.com/amills-vpmgmt/vpmgmt-rates/extract"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
)

var testBounds = extract.Bounds{Min: 40, Max: 600}

func offer(price int, member, refundable interface{}, ctx string) models.Offer {
	o := models.Offer{
		Price:       price,
		Basis:       models.BasisNightlyUnknown,
		ProviderCtx: ctx,
		Source:      models.SourceProperties,
	}
	if m, ok := member.(bool); ok {
		o.Member = &m
	}
	if r, ok := refundable.(bool); ok {
		o.Refundable = &r
	}
	return o
}

func TestClassifyAndSelect_PublicRefundableWins(t *testing.T) {
	offers := []models.Offer{
		offer(130, true, true, "Expedia member price"),
		offer(150, false, true, "Expedia"),
	}

	summary := ClassifyAndSelect(offers, "", testBounds)
	if summary.Primary == nil {
		t.Fatalf("expected a primary")
	}
	// The cheaper offer requires membership; the public refundable one wins.
	if summary.Primary.Price != 150 {
		t.Fatalf("expected 150, got %d", summary.Primary.Price)
	}
	if summary.Primary.Category != models.CategoryPublicRefundable {
		t.Fatalf("expected public_refundable, got %s", summary.Primary.Category)
	}
	if summary.Primary.Confidence != 0.99 {
		t.Fatalf("expected confidence 0.99, got %f", summary.Primary.Confidence)
	}
}

func TestClassifyAndSelect_FallbackKeepsActualCategory(t *testing.T) {
	offers := []models.Offer{
		offer(120, true, false, "Bonvoy advance purchase"),
	}

	summary := ClassifyAndSelect(offers, "", testBounds)
	if summary.Primary == nil {
		t.Fatalf("expected a primary")
	}
	if summary.Primary.Price != 120 {
		t.Fatalf("expected 120, got %d", summary.Primary.Price)
	}
	if summary.Primary.Category != models.CategoryMemberNonrefundable {
		t.Fatalf("fallback must report the real bucket, got %s", summary.Primary.Category)
	}
	if summary.Primary.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %f", summary.Primary.Confidence)
	}
}

func TestClassifyAndSelect_UnknownRefundabilityBucketsRefundable(t *testing.T) {
	offers := []models.Offer{
		offer(110, false, nil, "Booking.com"),
	}

	summary := ClassifyAndSelect(offers, "", testBounds)
	if summary.Primary == nil {
		t.Fatalf("expected a primary")
	}
	if summary.Primary.Category != models.CategoryPublicRefundable {
		t.Fatalf("unknown refundability buckets as refundable, got %s", summary.Primary.Category)
	}
	if summary.Primary.Confidence != 0.99 {
		t.Fatalf("unknown refundability is eligible for the top tier, got %f", summary.Primary.Confidence)
	}
}

func TestClassifyAndSelect_RefundableTierBeforePublicTier(t *testing.T) {
	offers := []models.Offer{
		offer(100, true, true, "Honors member, free cancellation"),
		offer(140, false, false, "Advance purchase"),
	}

	summary := ClassifyAndSelect(offers, "", testBounds)
	if summary.Primary == nil {
		t.Fatalf("expected a primary")
	}
	// No public+refundable offer; the refundable tier outranks public.
	if summary.Primary.Price != 100 {
		t.Fatalf("expected 100, got %d", summary.Primary.Price)
	}
	if summary.Primary.Category != models.CategoryMemberRefundable {
		t.Fatalf("got %s", summary.Primary.Category)
	}
	if summary.Primary.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %f", summary.Primary.Confidence)
	}
}

func TestClassifyAndSelect_BrandFilterRestrictsTiers(t *testing.T) {
	offers := []models.Offer{
		offer(105, false, true, "Expedia.com"),
		offer(125, false, true, "ChoiceHotels.com, free cancellation"),
	}

	summary := ClassifyAndSelect(offers, "brand_choice", testBounds)
	if summary.Primary == nil {
		t.Fatalf("expected a primary")
	}
	if summary.Primary.Price != 125 {
		t.Fatalf("brand filter should skip the cheaper OTA offer, got %d", summary.Primary.Price)
	}
	if summary.Primary.Confidence != 0.99 {
		t.Fatalf("expected confidence 0.99, got %f", summary.Primary.Confidence)
	}
}

func TestClassifyAndSelect_BrandFilterFallbackUnrestricted(t *testing.T) {
	// No offer matches the brand at all; the final tier ignores the filter.
	offers := []models.Offer{
		offer(95, false, true, "Expedia.com"),
		offer(115, false, true, "Booking.com"),
	}

	summary := ClassifyAndSelect(offers, "brand_choice", testBounds)
	if summary.Primary == nil {
		t.Fatalf("expected a fallback primary")
	}
	if summary.Primary.Price != 95 {
		t.Fatalf("expected cheapest unrestricted offer, got %d", summary.Primary.Price)
	}
	if summary.Primary.Confidence != 0.5 {
		t.Fatalf("expected fallback confidence, got %f", summary.Primary.Confidence)
	}
}

func TestClassifyAndSelect_BeforeTaxWinsExactTie(t *testing.T) {
	a := offer(129, false, true, "Expedia")
	b := offer(129, false, true, "Hotels.com")
	b.Basis = models.BasisNightlyBeforeTax

	summary := ClassifyAndSelect([]models.Offer{a, b}, "", testBounds)
	if summary.Primary == nil {
		t.Fatalf("expected a primary")
	}
	if summary.Primary.Basis != models.BasisNightlyBeforeTax {
		t.Fatalf("before-tax basis should win an exact price tie, got %s", summary.Primary.Basis)
	}
}

func TestClassifyAndSelect_BasisNeverBeatsPrice(t *testing.T) {
	a := offer(125, false, true, "Expedia")
	b := offer(129, false, true, "Hotels.com")
	b.Basis = models.BasisNightlyBeforeTax

	summary := ClassifyAndSelect([]models.Offer{a, b}, "", testBounds)
	if summary.Primary.Price != 125 {
		t.Fatalf("cheaper offer must win regardless of basis, got %d", summary.Primary.Price)
	}
}

func TestClassifyAndSelect_Empty(t *testing.T) {
	summary := ClassifyAndSelect(nil, "", testBounds)
	if summary.Primary != nil {
		t.Fatalf("expected nil primary for no offers")
	}
	if len(summary.Ranges) != 0 {
		t.Fatalf("expected empty ranges, got %v", summary.Ranges)
	}
}

func TestClassifyAndSelect_ImplausibleRepaired(t *testing.T) {
	offers := []models.Offer{
		offer(12, false, true, "Expedia"),
		offer(999, false, true, "Expedia"),
	}

	summary := ClassifyAndSelect(offers, "", testBounds)
	if summary.Primary != nil {
		t.Fatalf("implausible offers must not survive repair")
	}
}

func TestClassifyAndSelect_Ranges(t *testing.T) {
	offers := []models.Offer{
		offer(110, false, true, "Expedia"),
		offer(150, false, true, "Booking.com"),
		offer(95, true, false, "Bonvoy advance purchase"),
	}

	summary := ClassifyAndSelect(offers, "", testBounds)
	want := models.CategoryRange{Low: 110, High: 150}
	if got := summary.Ranges[models.CategoryPublicRefundable]; got != want {
		t.Fatalf("public_refundable range = %v, want %v", got, want)
	}
	want = models.CategoryRange{Low: 95, High: 95}
	if got := summary.Ranges[models.CategoryMemberNonrefundable]; got != want {
		t.Fatalf("member_nonrefundable range = %v, want %v", got, want)
	}
	if _, ok := summary.Ranges[models.CategoryMemberRefundable]; ok {
		t.Fatalf("empty bucket must be absent from ranges")
	}
}

func TestClassifyAndSelect_ProviderSummaries(t *testing.T) {
	offers := []models.Offer{
		offer(100, false, true, "Expedia.com"),
		offer(120, false, true, "Hotels.com"),
		offer(130, false, true, "Booking.com"),
	}

	summary := ClassifyAndSelect(offers, "", testBounds)
	exp, ok := summary.Providers[GroupExpedia]
	if !ok {
		t.Fatalf("expected an Expedia group summary")
	}
	if exp.Low != 100 || exp.High != 120 || exp.Avg != 110 || exp.Count != 2 {
		t.Fatalf("unexpected Expedia summary %+v", exp)
	}
	if summary.Expedia == nil || *summary.Expedia != exp {
		t.Fatalf("Expedia summary should be surfaced directly")
	}
	if b := summary.Providers["ota_booking"]; b.Count != 1 {
		t.Fatalf("unexpected Booking summary %+v", b)
	}
}

func TestClassifyAndSelect_Deterministic(t *testing.T) {
	offers := []models.Offer{
		offer(110, false, true, "Expedia"),
		offer(110, false, true, "Booking.com"),
		offer(95, true, nil, "Honors member"),
		offer(140, false, false, "Advance purchase"),
	}

	first := ClassifyAndSelect(offers, "", testBounds)
	for i := 0; i < 20; i++ {
		again := ClassifyAndSelect(offers, "", testBounds)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("selection is not deterministic: %+v vs %+v", first, again)
		}
	}
}

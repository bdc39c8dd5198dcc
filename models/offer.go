package models

// Basis says whether a nightly amount is known to exclude taxes and fees.
type Basis string

const (
	BasisNightlyBeforeTax Basis = "nightly_before_tax"
	BasisNightlyUnknown   Basis = "nightly_unknown"
)

// OfferSource is the section of the search response an offer came from.
type OfferSource string

const (
	SourceProperties OfferSource = "properties"
	SourceAds        OfferSource = "ads"
)

// OfferCategory is one of four membership x refundability buckets.
type OfferCategory string

const (
	CategoryPublicRefundable    OfferCategory = "public_refundable"
	CategoryPublicNonrefundable OfferCategory = "public_nonrefundable"
	CategoryMemberRefundable    OfferCategory = "member_refundable"
	CategoryMemberNonrefundable OfferCategory = "member_nonrefundable"
)

// Offer is one candidate nightly price with provenance. Member and
// Refundable are nil until classified from the provider context; the
// selector repairs any nil left by the extractor before bucketing.
type Offer struct {
	Price       int         `json:"price"`
	Basis       Basis       `json:"basis"`
	ProviderCtx string      `json:"provider_ctx"`
	Member      *bool       `json:"member"`
	Refundable  *bool       `json:"refundable"`
	Source      OfferSource `json:"source"`
}

// Primary is the single price surfaced as "the" rate for a hotel on a date.
// Category reflects the actual bucket of the chosen offer, not the selection
// tier that produced it.
type Primary struct {
	Price       int           `json:"price"`
	Category    OfferCategory `json:"category"`
	Basis       Basis         `json:"basis"`
	Source      OfferSource   `json:"source"`
	Confidence  float64       `json:"confidence"`
	ProviderCtx string        `json:"-"`
}

// CategoryRange is the low/high nightly bounds observed within one bucket
// for one query. Never merged across queries or dates.
type CategoryRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// ProviderSummary aggregates the plausible prices seen for one provider
// pattern group (brand_hilton, ota_expedia, ...).
type ProviderSummary struct {
	Low   int `json:"low"`
	High  int `json:"high"`
	Avg   int `json:"avg"`
	Count int `json:"count"`
}

// RateSummary is the classified outcome for one hotel/date query.
type RateSummary struct {
	Primary   *Primary                        `json:"primary"`
	Ranges    map[OfferCategory]CategoryRange `json:"ranges"`
	Providers map[string]ProviderSummary      `json:"providers,omitempty"`
	Expedia   *ProviderSummary                `json:"expedia,omitempty"`
}

package extract

import (
	"strings"

	"github.com/amills-vpmgmt/vpmgmt-rates/models"
)

// providerCtxKeys are the identity/metadata fields concatenated into an
// offer's provider context, in priority order.
var providerCtxKeys = []string{
	"provider",
	"merchant",
	"source",
	"displayed_provider",
	"seller",
	"rate_plan",
	"description",
	"title",
	"name",
}

const ctxSeparator = " | "

// contextText builds the provider context for a record, prefixed with any
// context inherited from a parent record.
func contextText(rec Record, inherited string) string {
	var parts []string
	if inherited != "" {
		parts = append(parts, inherited)
	}
	for _, key := range providerCtxKeys {
		if s := rec.Str(key); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ctxSeparator)
}

// Sub-fields of the dual-shape nightly/total rate objects, most confident
// first. The extracted_* variants are already numeric; the others are
// display strings.
var beforeTaxSubFields = []string{"extracted_before_taxes_fees", "before_taxes_fees"}
var otherRateSubFields = []string{"extracted_lowest", "lowest", "price"}

// Legacy flat top-level price fields on older property payloads.
var legacyPriceFields = []string{"price", "rate_per_night_low", "rate_per_night_high"}

// ExtractOffers walks one matched property or ad record and flattens every
// plausible nightly price it exposes into Offers. Duplicates are not
// collapsed; the same price surfacing through several fields is fine since
// classification keys on price, not identity. A field of unrecognized shape
// is skipped, never fatal.
func ExtractOffers(rec Record, source models.OfferSource, bounds Bounds) []models.Offer {
	if rec == nil {
		return nil
	}

	if source == models.SourceAds {
		return extractAdOffers(rec, bounds)
	}

	ctx := contextText(rec, "")
	var offers []models.Offer

	offers = append(offers, rateFieldOffers(rec, "rate_per_night", ctx, source, bounds)...)
	offers = append(offers, rateFieldOffers(rec, "total_rate", ctx, source, bounds)...)

	for _, key := range legacyPriceFields {
		if v, ok := rec.Value(key); ok {
			if n, ok := bounds.PlausibleAmount(v); ok {
				offers = append(offers, newOffer(n, models.BasisNightlyUnknown, ctx, source))
			}
		}
	}

	if list, ok := rec.List("prices"); ok {
		for _, entry := range Records(list) {
			subCtx := contextText(entry, ctx)
			offers = append(offers, rateFieldOffers(entry, "rate_per_night", subCtx, source, bounds)...)
			if v, ok := entry.Value("price"); ok {
				if n, ok := bounds.PlausibleAmount(v); ok {
					offers = append(offers, newOffer(n, models.BasisNightlyUnknown, subCtx, source))
				}
			}
		}
	}

	return offers
}

// rateFieldOffers handles the dual-shape nightly/total rate field: either a
// bare numeric/string value, or an object exposing ranked sub-fields for the
// same concept. Every present sub-field that passes plausibility becomes its
// own candidate; before-tax sub-fields carry the before-tax basis.
func rateFieldOffers(rec Record, key, ctx string, source models.OfferSource, bounds Bounds) []models.Offer {
	v, ok := rec.Value(key)
	if !ok {
		return nil
	}

	var offers []models.Offer
	if obj, ok := rec.Map(key); ok {
		for _, sub := range beforeTaxSubFields {
			if sv, ok := obj.Value(sub); ok {
				if n, ok := bounds.PlausibleAmount(sv); ok {
					offers = append(offers, newOffer(n, models.BasisNightlyBeforeTax, ctx, source))
				}
			}
		}
		for _, sub := range otherRateSubFields {
			if sv, ok := obj.Value(sub); ok {
				if n, ok := bounds.PlausibleAmount(sv); ok {
					offers = append(offers, newOffer(n, models.BasisNightlyUnknown, ctx, source))
				}
			}
		}
		return offers
	}

	if n, ok := bounds.PlausibleAmount(v); ok {
		offers = append(offers, newOffer(n, models.BasisNightlyUnknown, ctx, source))
	}
	return offers
}

// extractAdOffers handles the narrower ad record shape: an extracted-price
// field and a generic price field only.
func extractAdOffers(rec Record, bounds Bounds) []models.Offer {
	ctx := contextText(rec, "")
	var offers []models.Offer
	for _, key := range []string{"extracted_price", "price"} {
		if v, ok := rec.Value(key); ok {
			if n, ok := bounds.PlausibleAmount(v); ok {
				offers = append(offers, newOffer(n, models.BasisNightlyUnknown, ctx, models.SourceAds))
			}
		}
	}
	return offers
}

func newOffer(price int, basis models.Basis, ctx string, source models.OfferSource) models.Offer {
	return models.Offer{
		Price:       price,
		Basis:       basis,
		ProviderCtx: ctx,
		Member:      boolPtr(DetectMembership(ctx)),
		Refundable:  DetectRefundability(ctx),
		Source:      source,
	}
}

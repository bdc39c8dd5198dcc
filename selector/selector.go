package selector

import (
	"math"
	"sort"

	"github.com/amills-vpmgmt/vpmgmt-rates/extract"
	"github.com/amills-vpmgmt/vpmgmt-rates/models"
)

// unknownRefundableIsRefundable: an offer whose refundability could not be
// determined is bucketed as refundable. The source often omits cancellation
// text while the default basket is cancellable. Bucketing only; the offer
// itself keeps its unknown state. Do not change without product sign-off.
const unknownRefundableIsRefundable = true

// Selection tier confidences, highest to lowest priority.
const (
	confPublicRefundable = 0.99
	confAnyRefundable    = 0.9
	confPublicAny        = 0.75
	confFallback         = 0.5
)

// ClassifyAndSelect buckets offers into the four categories, computes
// per-category low/high ranges and provider summaries, and applies the
// primary selection policy. brandFilter, when non-empty, names the provider
// group that restricts the candidate pool for the priority tiers; the final
// fallback tier is unrestricted. Pure and deterministic: the same offer
// list always yields the same summary.
func ClassifyAndSelect(offers []models.Offer, brandFilter string, bounds extract.Bounds) models.RateSummary {
	fixed := repair(offers, bounds)

	summary := models.RateSummary{
		Ranges: make(map[models.OfferCategory]models.CategoryRange),
	}

	buckets := bucketOffers(fixed)
	for category, items := range buckets {
		if r, ok := priceRange(items); ok {
			summary.Ranges[category] = r
		}
	}

	summary.Primary = choosePrimary(fixed, brandFilter)
	summary.Providers = providerSummaries(fixed)
	if s, ok := summary.Providers[GroupExpedia]; ok {
		summary.Expedia = &s
	}

	return summary
}

// repair drops implausible offers and resolves any membership/refundability
// left unclassified by the extractor, so bucketing never sees a nil member
// flag. Refundability may legitimately stay unknown.
func repair(offers []models.Offer, bounds extract.Bounds) []models.Offer {
	fixed := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if !bounds.Plausible(o.Price) {
			continue
		}
		if o.Member == nil {
			m := extract.DetectMembership(o.ProviderCtx)
			o.Member = &m
		}
		if o.Refundable == nil {
			o.Refundable = extract.DetectRefundability(o.ProviderCtx)
		}
		fixed = append(fixed, o)
	}
	return fixed
}

// bucketFor assigns an offer its category, applying the
// unknownRefundableIsRefundable policy for the bucket key only.
func bucketFor(o models.Offer) models.OfferCategory {
	member := o.Member != nil && *o.Member
	refundable := unknownRefundableIsRefundable
	if o.Refundable != nil {
		refundable = *o.Refundable
	}
	switch {
	case member && refundable:
		return models.CategoryMemberRefundable
	case member:
		return models.CategoryMemberNonrefundable
	case refundable:
		return models.CategoryPublicRefundable
	default:
		return models.CategoryPublicNonrefundable
	}
}

func bucketOffers(offers []models.Offer) map[models.OfferCategory][]models.Offer {
	out := make(map[models.OfferCategory][]models.Offer)
	for _, o := range offers {
		key := bucketFor(o)
		out[key] = append(out[key], o)
	}
	return out
}

func priceRange(offers []models.Offer) (models.CategoryRange, bool) {
	if len(offers) == 0 {
		return models.CategoryRange{}, false
	}
	low, high := offers[0].Price, offers[0].Price
	for _, o := range offers[1:] {
		if o.Price < low {
			low = o.Price
		}
		if o.Price > high {
			high = o.Price
		}
	}
	return models.CategoryRange{Low: low, High: high}, true
}

func isPublic(o models.Offer) bool {
	return o.Member == nil || !*o.Member
}

func refundableOrUnknown(o models.Offer) bool {
	return o.Refundable == nil || *o.Refundable
}

// choosePrimary applies the fixed priority order: within the possibly
// brand-restricted pool, public+refundable first, then refundable, then
// public, then the cheapest plausible offer from the unrestricted pool.
// The reported category is the chosen offer's actual bucket, so a
// member-only fallback is labeled as such.
func choosePrimary(offers []models.Offer, brandFilter string) *models.Primary {
	pool := offers
	if brandFilter != "" {
		pool = nil
		for _, o := range offers {
			if MatchesBrand(o.ProviderCtx, brandFilter) {
				pool = append(pool, o)
			}
		}
	}

	tiers := []struct {
		pred func(models.Offer) bool
		pool []models.Offer
		conf float64
	}{
		{func(o models.Offer) bool { return isPublic(o) && refundableOrUnknown(o) }, pool, confPublicRefundable},
		{refundableOrUnknown, pool, confAnyRefundable},
		{isPublic, pool, confPublicAny},
		{func(models.Offer) bool { return true }, offers, confFallback},
	}

	for _, tier := range tiers {
		if o, ok := pickLowest(tier.pool, tier.pred); ok {
			return &models.Primary{
				Price:       o.Price,
				Category:    bucketFor(o),
				Basis:       o.Basis,
				Source:      o.Source,
				Confidence:  tier.conf,
				ProviderCtx: o.ProviderCtx,
			}
		}
	}

	return nil
}

// pickLowest returns the lowest-priced offer satisfying pred. On an exact
// price tie a before-tax-basis offer wins; otherwise the first encountered
// does. Basis preference applies only on ties, never across prices.
func pickLowest(pool []models.Offer, pred func(models.Offer) bool) (models.Offer, bool) {
	var chosen models.Offer
	found := false
	for _, o := range pool {
		if !pred(o) {
			continue
		}
		if !found || o.Price < chosen.Price {
			chosen = o
			found = true
			continue
		}
		if o.Price == chosen.Price &&
			chosen.Basis != models.BasisNightlyBeforeTax &&
			o.Basis == models.BasisNightlyBeforeTax {
			chosen = o
		}
	}
	return chosen, found
}

// providerSummaries aggregates prices per provider pattern group.
func providerSummaries(offers []models.Offer) map[string]models.ProviderSummary {
	groups := make(map[string][]int)
	for _, o := range offers {
		g := DetectProviderGroup(o.ProviderCtx)
		groups[g] = append(groups[g], o.Price)
	}

	out := make(map[string]models.ProviderSummary, len(groups))
	for g, prices := range groups {
		if s, ok := summarizePrices(prices); ok {
			out[g] = s
		}
	}
	return out
}

func summarizePrices(prices []int) (models.ProviderSummary, bool) {
	if len(prices) == 0 {
		return models.ProviderSummary{}, false
	}
	sorted := append([]int(nil), prices...)
	sort.Ints(sorted)
	sum := 0
	for _, p := range sorted {
		sum += p
	}
	return models.ProviderSummary{
		Low:   sorted[0],
		High:  sorted[len(sorted)-1],
		Avg:   int(math.Round(float64(sum) / float64(len(sorted)))),
		Count: len(sorted),
	}, true
}

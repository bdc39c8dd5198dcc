// Package selector buckets extracted offers into membership x refundability
// categories, computes per-category ranges, and applies the primary-rate
// selection policy.
package selector

import (
	"regexp"

	"github.com/amills-vpmgmt/vpmgmt-rates/extract"
)

// providerGroup is one named set of detection patterns. Patterns run
// against normalized provider context (lowercase, punctuation collapsed),
// so domain names appear as e.g. "hilton com".
type providerGroup struct {
	Name     string
	Patterns []*regexp.Regexp
}

func group(name string, patterns ...string) providerGroup {
	g := providerGroup{Name: name}
	for _, p := range patterns {
		g.Patterns = append(g.Patterns, regexp.MustCompile(p))
	}
	return g
}

// providerGroups is ordered: detection returns the first group that
// matches, so brand groups come before the broader OTA groups.
var providerGroups = []providerGroup{
	group("brand_choice", `choicehotels`, `choice hotels`, `comfort inn`, `quality inn`, `sleep inn`, `clarion`),
	group("brand_hilton", `hilton com`, `hilton`, `hampton`, `tru by hilton`, `\btru\b`),
	group("brand_marriott", `marriott com`, `marriott`, `courtyard`, `fairfield`),
	group("brand_bw", `bestwestern com`, `best western`),
	group("brand_radisson", `radisson`, `country inn`),
	group("ota_expedia", `expedia`, `hotels com`, `travelocity`, `orbitz`, `ebookers`, `wotif`),
	group("ota_booking", `booking com`, `agoda`, `kayak`, `priceline`, `trip com`),
}

// GroupOther is the catch-all for providers matching no known group.
const GroupOther = "other"

// GroupExpedia is surfaced explicitly in summaries for the dashboard's
// Expedia columns.
const GroupExpedia = "ota_expedia"

// DetectProviderGroup names the provider pattern group the context belongs
// to, or GroupOther.
func DetectProviderGroup(providerCtx string) string {
	t := extract.NormText(providerCtx)
	for _, g := range providerGroups {
		for _, p := range g.Patterns {
			if p.MatchString(t) {
				return g.Name
			}
		}
	}
	return GroupOther
}

// MatchesBrand reports whether the context matches the named group's
// detection patterns. Unknown group names match nothing.
func MatchesBrand(providerCtx, groupName string) bool {
	if groupName == "" {
		return false
	}
	t := extract.NormText(providerCtx)
	for _, g := range providerGroups {
		if g.Name != groupName {
			continue
		}
		for _, p := range g.Patterns {
			if p.MatchString(t) {
				return true
			}
		}
	}
	return false
}

// KnownGroup reports whether the name is a configured provider group,
// used to validate roster brand hints at load time.
func KnownGroup(name string) bool {
	for _, g := range providerGroups {
		if g.Name == name {
			return true
		}
	}
	return false
}

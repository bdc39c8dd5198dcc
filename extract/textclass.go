package extract

import (
	"regexp"
	"strings"
)

var nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)

// NormText lowercases and collapses punctuation runs to single spaces so
// marker lists match regardless of hyphenation ("non-refundable").
func NormText(s string) string {
	return strings.TrimSpace(nonAlnumRegex.ReplaceAllString(strings.ToLower(s), " "))
}

var memberMarkers = []string{
	"member",
	"loyalty",
	"privileges",
	"honors",
	"bonvoy",
}

var nonRefundableMarkers = []string{
	"nonrefundable",
	"non refundable",
	"advance purchase",
	"prepay",
	"no refund",
}

var refundableMarkers = []string{
	"free cancellation",
	"refundable",
	"cancel",
	"free to cancel",
}

// DetectMembership reports whether the text mentions a loyalty-program
// requirement, via the generic marker or a brand program name.
func DetectMembership(text string) bool {
	t := NormText(text)
	for _, k := range memberMarkers {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// DetectRefundability classifies cancellation flexibility from free text.
// Returns false for non-refundable markers, true for refundable markers,
// nil when neither matches. Non-refundable markers are checked first and
// win when both appear.
func DetectRefundability(text string) *bool {
	t := NormText(text)
	for _, k := range nonRefundableMarkers {
		if strings.Contains(t, k) {
			return boolPtr(false)
		}
	}
	for _, k := range refundableMarkers {
		if strings.Contains(t, k) {
			return boolPtr(true)
		}
	}
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}

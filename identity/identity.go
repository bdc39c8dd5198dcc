// Package identity derives stable keys for tracked hotels so storage rows,
// report columns, and archive filenames agree regardless of how a display
// name was spelled in config or in a search result.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// nameReplacements run in order: "&" becomes "and" first so the suffix
// rules see one spelling.
var nameReplacements = []struct{ from, to string }{
	{"&", "and"},
	{"hotel and suites", "hotel"},
	{"inn and suites", "inn"},
}

var (
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// NormalizeName lowercases, strips punctuation, and collapses common
// suffix variants of a hotel display name.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range nameReplacements {
		name = strings.ReplaceAll(name, r.from, r.to)
	}
	name = nonAlnumRegex.ReplaceAllString(name, " ")
	name = multiSpaceRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// HotelKey is the snake_case key a hotel is stored and reported under.
func HotelKey(name string) string {
	return strings.ReplaceAll(NormalizeName(name), " ", "_")
}

// Fingerprint is a short stable hash of the hotel identity within a market,
// used as the dedupe key for hotel rows.
func Fingerprint(name, city string) string {
	input := fmt.Sprintf("%s|%s", NormalizeName(name), strings.ToLower(strings.TrimSpace(city)))
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

package checkout

import (
	"regexp"
	"strings"
)

// The storefront ships to the UK only, so postal codes follow the UK format.
var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)
	ukPostcode      = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? [0-9][A-Z]{2}$`)
	ukOutcodeStart  = regexp.MustCompile(`^[A-Z]{1,2}[0-9]`)
)

// NormalizePostalCode uppercases, strips everything that is not
// alphanumeric and re-inserts the separating space before the final three
// characters. Idempotent.
func NormalizePostalCode(raw string) string {
	compact := nonAlphanumeric.ReplaceAllString(strings.ToUpper(raw), "")
	if len(compact) <= 3 {
		return compact
	}
	return compact[:len(compact)-3] + " " + compact[len(compact)-3:]
}

// IsValidPostalCode reports whether the normalized form of raw is a valid
// UK postal code.
func IsValidPostalCode(raw string) bool {
	return ukPostcode.MatchString(NormalizePostalCode(raw))
}

// LooksLikePostalCode is the heuristic that decides whether free-text input
// should also be geocoded directly: it starts like a UK outcode, or it is
// still short enough to be a partial code.
func LooksLikePostalCode(input string) bool {
	compact := nonAlphanumeric.ReplaceAllString(strings.ToUpper(strings.TrimSpace(input)), "")
	if compact == "" {
		return false
	}
	if len(compact) <= 4 {
		return true
	}
	return len(compact) <= 8 && ukOutcodeStart.MatchString(compact)
}

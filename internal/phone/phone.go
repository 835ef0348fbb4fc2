// Package phone derives the canonical guest identity key from raw phone
// input. Purely textual; no telecom plausibility checks.
package phone

import "strings"

// Digits strips every non-digit rune.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonical concatenates the country code with the digit-only local number,
// no separator. Degrades to just the country code when every rune of the
// local number is stripped; callers treat that as invalid input.
func Canonical(local, countryCode string) string {
	return countryCode + Digits(local)
}

// Package phone normalizes phone numbers to a canonical E.164-like form:
// a leading "+" followed only by digits.
package phone

import "strings"

// Normalize strips everything except digits from the input and prefixes the
// result with "+". An input without any digits normalizes to the empty
// string. Normalize is idempotent.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// Package slug derives canonical URL-safe tokens from free-form titles.
package slug

import "strings"

// Characters stripped outright before hyphenation, matching the strict
// exclusion set used by the authoring form.
const removeSet = "*+~.()'\"!:@?,;&%#$^=<>[]{}|\\/`"

// Normalize maps arbitrary text to a lowercase ASCII hyphenated token:
// punctuation in the exclusion set is dropped, every remaining run of
// non-alphanumerics collapses to a single hyphen, and leading/trailing
// hyphens are trimmed. Total and idempotent; worst case returns "".
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case strings.ContainsRune(removeSet, r):
			// dropped, does not act as a separator
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

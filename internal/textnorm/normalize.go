// Package textnorm provides the canonical text form used by every phrase
// and identifier comparison in the validator. PDF text layers are noisy:
// accents survive in some extractors and not others, casing is arbitrary,
// and whitespace runs are common. All searches happen on the normalized
// form so rule phrases can be written once.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// stripAccents removes combining marks after NFD decomposition, so that
// "Evolución" and "EVOLUCION" normalize to the same bytes.
var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize returns the canonical comparison form of s: accent-free,
// upper-cased, with whitespace runs collapsed to single spaces and the
// result trimmed. Normalize is idempotent.
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		// Malformed input falls back to the raw bytes; comparisons
		// still happen on a consistent casing and spacing.
		out = s
	}
	out = strings.ToUpper(out)
	out = whitespaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// EscapeLiteral quotes regexp metacharacters so a normalized phrase can be
// embedded in a pattern as a literal.
func EscapeLiteral(s string) string {
	return regexp.QuoteMeta(s)
}

// Contains reports whether needle occurs in haystack once both are
// normalized. An empty needle never matches.
func Contains(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), n)
}

// CountOccurrences counts non-overlapping occurrences of needle in
// haystack, both normalized. An empty needle counts zero.
func CountOccurrences(haystack, needle string) int {
	n := Normalize(needle)
	if n == "" {
		return 0
	}
	return strings.Count(Normalize(haystack), n)
}

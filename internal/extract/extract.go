// Package extract pulls structured values out of raw PDF text layers:
// visit timestamps, counters printed after a known phrase, and order/
// duplicate audits over the extracted dates. Extraction runs on raw text
// because PDF extractors frequently insert spurious whitespace between
// glyphs; the patterns tolerate a space between any two digits.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/casalud/claims-validator/internal/textnorm"
)

// timestampPattern matches `YYYY-MM-DD` followed by a time-of-day, with
// optional whitespace between every digit. Accepted time shapes:
// `H:MM`/`HH:MM`, and `H HH:MM` (a truncated hour glued to the next
// line's time). Only the date is captured.
var timestampPattern = regexp.MustCompile(
	`\b(\d\s*\d\s*\d\s*\d\s*-\s*\d\s*\d\s*-\s*\d\s*\d)\b\s+(?:\d(?:\s*\d)?(?:(?:\s*:\s*\d\s*\d)|(?:\s+\d\s*\d\s*:\s*\d\s*\d)))\b`)

var anyWhitespace = regexp.MustCompile(`\s+`)

// Timestamps returns every visit date found in raw, compacted to
// YYYY-MM-DD, in document order with duplicates preserved. Matches whose
// date is immediately preceded by '[' are metadata echoes (bracketed
// audit stamps) and are skipped; RE2 has no lookbehind, so the exclusion
// is checked on the byte before each match.
func Timestamps(raw string) []string {
	var dates []string
	for _, m := range timestampPattern.FindAllStringSubmatchIndex(raw, -1) {
		if m[0] > 0 && raw[m[0]-1] == '[' {
			continue
		}
		date := raw[m[2]:m[3]]
		dates = append(dates, anyWhitespace.ReplaceAllString(date, ""))
	}
	return dates
}

// TrailingNumber finds the first integer printed after phrase in raw.
// Both sides are normalized before matching, so accents, casing and
// whitespace in either do not matter. ok is false when the phrase is
// absent or no number follows it.
func TrailingNumber(raw, phrase string) (n int, ok bool) {
	p := textnorm.Normalize(phrase)
	if p == "" {
		return 0, false
	}
	re, err := regexp.Compile(textnorm.EscapeLiteral(p) + `\s*(\d+)`)
	if err != nil {
		return 0, false
	}
	m := re.FindStringSubmatch(textnorm.Normalize(raw))
	if m == nil {
		return 0, false
	}
	n, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// AuditOrder inspects a date sequence as it appeared in the document.
// It returns the set of dates that occur more than once (each listed
// one time, in first-seen order) and whether the sequence is not in
// ascending order. Dates are compared lexically, which is chronological
// for the YYYY-MM-DD form Timestamps produces.
func AuditOrder(dates []string) (duplicates []string, outOfOrder bool) {
	seen := make(map[string]int, len(dates))
	for i, d := range dates {
		seen[d]++
		if seen[d] == 2 {
			duplicates = append(duplicates, d)
		}
		if i > 0 && strings.Compare(dates[i-1], d) > 0 {
			outOfOrder = true
		}
	}
	return duplicates, outOfOrder
}

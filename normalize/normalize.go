// Package normalize provides the shared machinery used by the per-kind
// entity normalizers: name normalization, attribute field mappings and
// geometry validation.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var strip_diacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key derives the match key for 'name': case-folded, diacritics and
// punctuation stripped, whitespace collapsed. Two raw features naming the
// same real-world entity are expected to produce the same key.
func Key(name string) string {

	s, _, err := transform.String(strip_diacritics, name)

	if err != nil {
		s = name
	}

	var b strings.Builder
	last_space := true

	for _, r := range strings.ToUpper(s) {

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			last_space = false
		default:
			if !last_space {
				b.WriteRune(' ')
				last_space = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// DisplayName derives the canonical display form of 'name': trimmed, inner
// whitespace collapsed, casing preserved as published by the source.
func DisplayName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Backfill copies 'src' into '*dst' when the winner of a deduplication left
// the attribute empty.
func Backfill(dst *string, src string) {

	if *dst == "" && src != "" {
		*dst = src
	}
}

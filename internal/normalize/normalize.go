// Package normalize canonicalizes identifiers and display text coming from
// the scanner and the inventory table. The scanner's LCD only renders a
// limited ASCII charset, so everything shown on it goes through Display.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text and drops combining marks, so "é" becomes "e".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// UID removes the surrounding whitespace an RFID reader tends to append.
func UID(raw string) string {
	return strings.TrimSpace(raw)
}

// FoldKey is the client-side mirror of the store's UPPER(TRIM(col))
// comparison: identifiers differing only by case, whitespace or diacritics
// fold to the same key.
func FoldKey(raw string) string {
	return strings.ToUpper(Display(UID(raw)))
}

// Display strips diacritical marks and keeps only printable ASCII. Runes
// that do not decompose to ASCII are dropped, not replaced. Never fails;
// empty input yields an empty string.
func Display(raw string) string {
	if raw == "" {
		return ""
	}

	s, _, err := transform.String(stripMarks, raw)
	if err != nil {
		s = raw
	}

	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		}
	}

	return b.String()
}

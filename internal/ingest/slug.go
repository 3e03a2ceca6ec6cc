// Package ingest turns external civic data files (CSV facility exports,
// GeoJSON or shapefile district boundaries, YAML city definitions) into
// model records for the store. A malformed record is skipped and logged,
// never failing a whole import.
package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// germanReplacer transliterates umlauts and sharp s the way German place
// slugs conventionally do, before generic diacritic folding.
var germanReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a stable URL-safe slug from a display name:
// "Neckarstadt-Ost" -> "neckarstadt-ost", "Käfertal Süd" -> "kaefertal-sued".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = germanReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), "-")
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}

	var b strings.Builder
	for _, r := range s {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package greek

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes, drops combining marks (accents, breathings,
// iota subscripts) and recomposes.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stopwords holds accent-stripped forms of articles, particles and other
// high-frequency function words excluded from vocabulary statistics.
var stopwords = map[string]bool{
	"ο": true, "η": true, "το": true, "οι": true, "αι": true, "τα": true,
	"του": true, "των": true, "τη": true, "της": true, "τασ": true,
	"τοις": true, "τους": true, "τας": true, "τον": true, "την": true,
	"τω": true, "και": true, "δε": true, "γαρ": true, "μεν": true,
	"εν": true, "εις": true, "εκ": true, "εξ": true, "ως": true,
	"ησαν": true, "ην": true, "εστι": true, "εστιν": true, "ου": true,
	"ουκ": true, "μη": true, "ουδε": true, "ουτε": true, "μητε": true,
	"αλλα": true, "αλλ": true,
}

// IsGreek reports whether r falls in the basic or extended (polytonic)
// Greek blocks.
func IsGreek(r rune) bool {
	return (r >= 0x0370 && r <= 0x03FF) || (r >= 0x1F00 && r <= 0x1FFF)
}

// Words extracts runs of Greek script characters from mixed text.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !IsGreek(r)
	})
}

// Normalize strips diacritics from a Greek word and lowercases it, so
// that accented and unaccented spellings compare equal.
func Normalize(word string) string {
	stripped, _, err := transform.String(stripMarks, word)
	if err != nil {
		stripped = word
	}
	return strings.ToLower(stripped)
}

// IsStopword reports whether the normalized word is a function word.
func IsStopword(normalized string) bool {
	return stopwords[normalized]
}

// WordCount counts whitespace-delimited tokens. This is the corpus-wide
// word count metric; it deliberately counts every token, not just Greek
// script, so edited passages with editorial brackets keep stable counts.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Package textutil holds the text normalization shared by the matcher
// and the spokesperson registry. All matching in the pipeline happens on
// folded text so that accents and casing never affect counts.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips combining marks (NFD decomposition, drop
// marks, recompose). "São Paulo" folds to "sao paulo".
func Fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		// transform only fails on invalid UTF-8; fall back to the raw text.
		out = s
	}
	return strings.ToLower(out)
}

var (
	multiSpace = regexp.MustCompile(`\s+`)
	multiComma = regexp.MustCompile(`(?:,\s*)+,`)
)

// CleanChannelTags normalizes the raw channel tag string from the feed:
// strips brackets and quotes, collapses repeated whitespace and commas,
// and trims stray separators. The feed serializes tag lists in several
// slightly different shapes; after cleaning they all look like
// "tag one, tag two".
func CleanChannelTags(raw string) string {
	cleaned := strings.NewReplacer("[", "", "]", "", "'", "", `"`, "").Replace(raw)
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = multiComma.ReplaceAllString(cleaned, ",")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, ",")
	return strings.TrimSpace(cleaned)
}

// WordPattern compiles a whole-word pattern for an already-folded term.
func WordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
}

// ContainsWord reports whether the folded term occurs as a whole word in
// the folded text. Both arguments are folded internally.
func ContainsWord(text, term string) bool {
	return WordPattern(Fold(term)).MatchString(Fold(text))
}

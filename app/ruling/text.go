package ruling

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize composes s to NFC and lowercases it with Portuguese casing rules,
// so that "LICITAÇÃO" and a decomposed "licitação" compare equal.
func Normalize(s string) string {
	// cases.Caser keeps state and must not be shared between goroutines.
	return cases.Lower(language.BrazilianPortuguese).String(norm.NFC.String(s))
}

// AnalysisText is the single lowercase string every keyword and similarity
// check runs against: lowercase(title) + " " + lowercase(summary).
func AnalysisText(title, summary string) string {
	return Normalize(title) + " " + Normalize(summary)
}

// Contains reports whether the normalized needle occurs in text.
// text is expected to be normalized already.
func Contains(text, needle string) bool {
	needle = Normalize(strings.TrimSpace(needle))
	if needle == "" {
		return false
	}
	return strings.Contains(text, needle)
}

// Tokenize splits normalized text into word tokens of at least two runes
// and drops Portuguese stopwords.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if IsStopword(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopword reports whether token is in the fixed Portuguese stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

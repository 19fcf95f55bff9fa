package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTokenRunes is the shortest token kept by Tokenize; shorter ones are
// dropped together with stop words.
const minTokenRunes = 3

var stopWords = map[string]struct{}{
	"для": {}, "или": {}, "при": {}, "про": {}, "без": {}, "под": {}, "над": {},
	"что": {}, "как": {}, "это": {}, "где": {}, "все": {}, "так": {}, "тоже": {},
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
}

// lower folds s to lower case using Russian rules.  A Caser is stateful, so
// a new one is created per call.
func lower(s string) string {
	return cases.Lower(language.Russian).String(s)
}

// Tokenize lowercases the query, strips punctuation, splits on whitespace and
// drops short tokens and stop words.  The result is used for synonym lookup
// and diagnostics only; matching itself stays a raw substring match.
func Tokenize(query string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, lower(query))

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenRunes {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

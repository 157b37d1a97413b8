package search

import (
	"strings"
	"unicode"
)

// stopTerms are high-frequency words that carry no signal for verbatim
// matching; they are ignored on both sides of the comparison.
var stopTerms = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {},
}

// queryTerms extracts the significant terms of a query: lowercased runs
// of letters and digits, with stop terms removed. The result is computed
// once per query and compared against every candidate chunk.
func queryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, stop := stopTerms[field]; !stop {
			terms = append(terms, field)
		}
	}
	return terms
}

// coversTerms reports whether the chunk text contains every term. An
// empty term list never matches, so a query of only stop words earns no
// boost.
func coversTerms(text string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}

	seen := make(map[string]struct{})
	for _, term := range queryTerms(text) {
		seen[term] = struct{}{}
	}

	for _, term := range terms {
		if _, ok := seen[term]; !ok {
			return false
		}
	}
	return true
}

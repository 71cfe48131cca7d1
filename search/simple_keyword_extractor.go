package search

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var nonWordPattern = regexp.MustCompile(`[^\w\s+#.-]`)

// SimpleKeywordExtractor implements KeywordExtractor using stop word removal and snowball stemming
type SimpleKeywordExtractor struct {
	stopWords map[string]bool
}

// NewSimpleKeywordExtractor creates a new simple keyword extractor
func NewSimpleKeywordExtractor() *SimpleKeywordExtractor {
	stopWords := map[string]bool{
		"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
		"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
		"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
		"that": true, "the": true, "to": true, "was": true, "were": true, "will": true,
		"with": true, "would": true, "could": true, "should": true, "may": true,
		"might": true, "can": true, "must": true, "shall": true, "do": true,
		"does": true, "did": true, "have": true, "had": true, "this": true,
		"these": true, "they": true, "them": true, "their": true, "his": true,
		"her": true, "she": true, "we": true, "you": true, "your": true,
		"our": true, "us": true, "me": true, "my": true, "i": true,
		"or": true, "not": true, "what": true, "how": true, "why": true,
		"when": true, "where": true, "which": true, "who": true, "about": true,
		"into": true, "there": true, "if": true, "so": true, "than": true,
		"then": true,
	}

	return &SimpleKeywordExtractor{stopWords: stopWords}
}

// ExtractKeywords returns the lower-cased, de-duplicated query words that are not stop words,
// in the order they first appear.
func (ske *SimpleKeywordExtractor) ExtractKeywords(query string) []string {
	query = strings.ToLower(query)
	query = nonWordPattern.ReplaceAllString(query, " ")

	var keywords []string
	seen := make(map[string]bool)

	for _, word := range strings.Fields(query) {
		word = strings.Trim(word, ".-")
		if word == "" || ske.stopWords[word] {
			continue
		}
		// single letters carry no signal unless they are a language name such as "c"
		if len(word) < 2 && word != "c" {
			continue
		}
		if !seen[word] {
			keywords = append(keywords, word)
			seen[word] = true
		}
	}

	return keywords
}

// Stems maps keywords to their english snowball stems, keeping the input order.
// Words the stemmer rejects are kept as they are.
func (ske *SimpleKeywordExtractor) Stems(keywords []string) []string {
	stems := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		stem, err := snowball.Stem(kw, "english", true)
		if err != nil || len(stem) < 2 {
			stem = kw
		}
		if !seen[stem] {
			stems = append(stems, stem)
			seen[stem] = true
		}
	}
	return stems
}

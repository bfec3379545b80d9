package features

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer splits text into lowercase word tokens and builds n-gram terms
type Tokenizer struct {
	stopwords map[string]struct{}
	minN      int
	maxN      int
}

// NewTokenizer creates a unigram tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[cases.Lower(language.Und).String(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops, minN: 1, maxN: 1}
}

// SetNGramRange sets the inclusive range of n-gram lengths produced by Terms.
// Out-of-range values are clamped to a valid unigram range.
func (t *Tokenizer) SetNGramRange(minN, maxN int) {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	t.minN, t.maxN = minN, maxN
}

// Tokenize splits text into lowercase word tokens, dropping stopwords.
// A word is a run of letters, digits or underscores at least two runes long.
//
// Lowercasing uses full Unicode case mapping rather than per-rune
// unicode.ToLower: U+0130 becomes "i" followed by a combining dot, which
// splits the word, and a word-final capital sigma becomes ς.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()
		if utf8.RuneCountInString(word) < 2 {
			return
		}
		if _, stop := t.stopwords[word]; stop {
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range cases.Lower(language.Und).String(text) {
		if isWordRune(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// Terms tokenizes text and expands the tokens into n-grams joined by a space
func (t *Tokenizer) Terms(text string) []string {
	tokens := t.Tokenize(text)
	if t.maxN == 1 {
		return tokens
	}

	var terms []string
	minN := t.minN
	if minN == 1 {
		terms = append(terms, tokens...)
		minN = 2
	}
	for n := minN; n <= t.maxN && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

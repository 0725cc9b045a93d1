package topicassist

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenSet is the normalized keyword set of a title.
type TokenSet map[string]struct{}

// Tokenizer turns free text into a TokenSet. It is safe for concurrent use
// once built.
type Tokenizer struct {
	minLen    int
	stopwords map[string]struct{}
}

func NewTokenizer(minWordLen int, stopwords []string) *Tokenizer {
	t := &Tokenizer{
		minLen:    minWordLen,
		stopwords: make(map[string]struct{}, len(stopwords)),
	}
	for _, w := range stopwords {
		t.stopwords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return t
}

// Tokenize lowercases text, splits it on every run of characters that are not
// letters or digits, and keeps the words that are long enough and not stopwords.
func (t *Tokenizer) Tokenize(text string) TokenSet {
	set := make(TokenSet)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if utf8.RuneCountInString(w) < t.minLen {
			continue
		}
		if _, stop := t.stopwords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// Compare returns the similarity of two titles.
func (t *Tokenizer) Compare(a, b string) float64 {
	return Similarity(t.Tokenize(a), t.Tokenize(b))
}

// Similarity is the Jaccard index of a and b. Two empty sets are identical,
// one empty set shares nothing with a non-empty one.
func Similarity(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for w := range small {
		if _, ok := large[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

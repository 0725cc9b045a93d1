package topicassist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(3, DefaultStopwords)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "case and punctuation", text: "Refactor-Plan!!", want: []string{"refactor", "plan"}},
		{name: "short words dropped", text: "Refactor plan v2", want: []string{"refactor", "plan"}},
		{name: "stopwords dropped", text: "Update on the deployment issue", want: []string{"deployment"}},
		{name: "digits kept", text: "release 2024 notes", want: []string{"release", "2024", "notes"}},
		{name: "unicode letters", text: "Café menü", want: []string{"café", "menü"}},
		{name: "only noise", text: "--- ?? !!", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			assert.Len(t, got, len(tt.want))
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	tok := NewTokenizer(3, DefaultStopwords)
	assert.Equal(t, tok.Tokenize("Deployment   STRATEGY"), tok.Tokenize("deployment, strategy."))
}

func TestSimilarity(t *testing.T) {
	set := func(words ...string) TokenSet {
		s := make(TokenSet)
		for _, w := range words {
			s[w] = struct{}{}
		}
		return s
	}

	tests := []struct {
		name string
		a, b TokenSet
		want float64
	}{
		{name: "both empty", a: set(), b: set(), want: 1.0},
		{name: "one empty", a: set("plan"), b: set(), want: 0.0},
		{name: "identical", a: set("refactor", "plan"), b: set("plan", "refactor"), want: 1.0},
		{name: "disjoint", a: set("refactor", "plan"), b: set("deployment", "strategy"), want: 0.0},
		{name: "half overlap", a: set("refactor", "plan"), b: set("refactor", "plan", "deployment", "strategy"), want: 0.5},
		{name: "one of three", a: set("alpha", "beta"), b: set("beta", "gamma"), want: 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
			assert.InDelta(t, Similarity(tt.a, tt.b), Similarity(tt.b, tt.a), 1e-9, "symmetric")
		})
	}
}

func TestSimilaritySelfIsOne(t *testing.T) {
	tok := NewTokenizer(3, DefaultStopwords)
	for _, s := range []string{"", "a", "the topic", "Switching to deployment strategy", "日本語 テキスト", "x-y-z 123"} {
		assert.Equal(t, 1.0, Similarity(tok.Tokenize(s), tok.Tokenize(s)), s)
	}
}

func TestHistory(t *testing.T) {
	tok := NewTokenizer(3, DefaultStopwords)
	var h History

	assert.False(t, h.Covers("anything", tok, 0.8), "empty history covers nothing")

	h.Remember("  Deployment Strategy ")
	assert.Equal(t, "Deployment Strategy", h.Last())
	assert.True(t, h.Repeats("deployment strategy"))
	assert.True(t, h.Covers("DEPLOYMENT STRATEGY", tok, 0.8))
	assert.True(t, h.Covers("the deployment strategy", tok, 0.8))
	assert.False(t, h.Covers("refactor plan", tok, 0.8))

	h.Remember("   ")
	assert.Equal(t, "Deployment Strategy", h.Last(), "blank titles are not remembered")

	h.Reset()
	assert.Empty(t, h.Last())
}

package topicassist

import "time"

// Settings holds every tunable of the suggestion controller. Zero values are
// replaced by the defaults in DefaultSettings when a controller is built.
type Settings struct {
	BatchThreshold      int
	CooldownWindow      time.Duration
	MaxIdsSent          int
	MinWordLen          int
	PrecheckSimilarity  float64
	PostcheckSimilarity float64
	Stopwords           []string
}

// DefaultStopwords are dropped before titles are compared. Besides common English
// filler they include chat-domain words ("topic", "issue", "update") that would
// otherwise make unrelated titles look alike.
var DefaultStopwords = []string{
	"the", "and", "for", "with", "this", "that", "these", "those", "from", "into",
	"onto", "about", "over", "under", "after", "before", "what", "when", "where",
	"which", "who", "why", "how", "will", "would", "should", "could", "can", "have",
	"has", "had", "are", "was", "were", "been", "being", "our", "your", "their",
	"its", "not", "but", "you", "they", "them", "then", "than", "also", "just",
	"some", "any", "all", "via", "per", "out",
	"topic", "topics", "issue", "issues", "update", "updates", "discussion",
	"question", "questions", "thread", "chat", "new", "misc", "general",
}

func DefaultSettings() Settings {
	return Settings{
		BatchThreshold:      3,
		CooldownWindow:      10 * time.Second,
		MaxIdsSent:          50,
		MinWordLen:          3,
		PrecheckSimilarity:  0.8,
		PostcheckSimilarity: 0.7,
		Stopwords:           DefaultStopwords,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.BatchThreshold <= 0 {
		s.BatchThreshold = d.BatchThreshold
	}
	if s.CooldownWindow <= 0 {
		s.CooldownWindow = d.CooldownWindow
	}
	if s.MaxIdsSent <= 0 {
		s.MaxIdsSent = d.MaxIdsSent
	}
	if s.MinWordLen <= 0 {
		s.MinWordLen = d.MinWordLen
	}
	if s.PrecheckSimilarity <= 0 {
		s.PrecheckSimilarity = d.PrecheckSimilarity
	}
	if s.PostcheckSimilarity <= 0 {
		s.PostcheckSimilarity = d.PostcheckSimilarity
	}
	if s.Stopwords == nil {
		s.Stopwords = d.Stopwords
	}
	return s
}

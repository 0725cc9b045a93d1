package topicassist

import "strings"

// History remembers the last suggestion title the user has already seen, applied,
// or that was dropped as a near-duplicate.
type History struct {
	last string
}

func (h *History) Last() string {
	return h.last
}

// Remember replaces the stored title. Blank titles are ignored so that an empty
// oracle answer never erases what the user already saw.
func (h *History) Remember(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	h.last = title
}

// Repeats reports whether title is the same as the remembered one, ignoring case.
func (h *History) Repeats(title string) bool {
	return h.last != "" && strings.EqualFold(strings.TrimSpace(title), h.last)
}

// Covers reports whether the remembered title already describes topic, either
// verbatim or with a similarity at or above threshold.
func (h *History) Covers(topic string, tok *Tokenizer, threshold float64) bool {
	if h.last == "" {
		return false
	}
	if h.Repeats(topic) {
		return true
	}
	return tok.Compare(h.last, topic) >= threshold
}

func (h *History) Reset() {
	h.last = ""
}

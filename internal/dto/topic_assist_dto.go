package dto

type FloatingSuggestionResponse struct {
	AnchorId       int64  `json:"anchor_id"`
	CurrentTopic   string `json:"current_topic"`
	SuggestedTitle string `json:"suggested_title"`
}

type TopicAssistStateResponse struct {
	State         string                      `json:"state"`
	Suggestion    *FloatingSuggestionResponse `json:"suggestion,omitempty"`
	LastSuggested string                      `json:"last_suggested,omitempty"`
	Pending       int                         `json:"pending"`
}

type ApplySuggestionRequest struct {
	Title string `json:"title"`
}

type ApplySuggestionResponse struct {
	Applied bool   `json:"applied"`
	Title   string `json:"title,omitempty"`
	State   string `json:"state"`
}

type TopicAssistActionResponse struct {
	Changed bool   `json:"changed"`
	State   string `json:"state"`
}

// TopicSuggestionEvent is pushed to the user's websocket connections.
type TopicSuggestionEvent struct {
	Type       string                      `json:"type"`
	Suggestion *FloatingSuggestionResponse `json:"suggestion,omitempty"`
}

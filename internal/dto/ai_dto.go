package dto

type SuggestTopicTitleRequest struct {
	MessageId    *int64  `json:"message_id"`
	MessageIds   []int64 `json:"message_ids"`
	CurrentTitle string  `json:"current_title"`
}

type SuggestTopicTitleResponse struct {
	SuggestedTitle string `json:"suggested_title"`
	AnchorId       int64  `json:"anchor_id"`
}

type MessageRecapRequest struct {
	MessageIds []int64 `json:"message_ids"`
}

type MessageRef struct {
	MessageId int64  `json:"message_id"`
	Anchor    string `json:"anchor"`
	Snippet   string `json:"snippet"`
}

type MessageRecapResponse struct {
	RecapHtml   string       `json:"recap_html"`
	MessageRefs []MessageRef `json:"message_refs"`
}

package topicassist

import "context"

// PropagateChangeLater renames the anchor message and every later message of the
// same discussion.
const PropagateChangeLater = "change_later"

type SuggestRequest struct {
	MessageIds   []int64 `json:"message_ids"`
	CurrentTitle string  `json:"current_title"`
}

// SuggestResponse carries the oracle's answer. An empty title means "no suggestion".
type SuggestResponse struct {
	SuggestedTitle string `json:"suggested_title"`
	AnchorId       int64  `json:"anchor_id,omitempty"`
}

type RenameRequest struct {
	Anchor        int64  `json:"-"`
	Topic         string `json:"topic"`
	PropagateMode string `json:"propagate_mode"`
}

// FloatingSuggestion is the single suggestion a controller may be showing.
type FloatingSuggestion struct {
	Anchor         int64  `json:"anchor"`
	CurrentTopic   string `json:"current_topic"`
	SuggestedTitle string `json:"suggested_title"`
}

// Oracle produces title suggestions for a batch of messages.
type Oracle interface {
	SuggestTitle(ctx context.Context, req SuggestRequest) (SuggestResponse, error)
}

// Renamer renames a discussion starting at an anchor message.
type Renamer interface {
	RenameTopic(ctx context.Context, req RenameRequest) error
}

// Presenter renders the floating suggestion. It is called while the controller
// holds its lock and must not call back into the controller.
type Presenter interface {
	Show(s FloatingSuggestion)
	Hide()
}

type State string

const (
	StateIdle      State = "idle"
	StateRequested State = "requested"
	StateOffered   State = "offered"
	StateApplying  State = "applying"
)

// Outcome names a lifecycle transition reported to the transition hook.
type Outcome string

const (
	OutcomeRequested   Outcome = "requested"
	OutcomeSuppressed  Outcome = "suppressed"
	OutcomeOffered     Outcome = "offered"
	OutcomeDismissed   Outcome = "dismissed"
	OutcomeClosed      Outcome = "closed"
	OutcomeApplied     Outcome = "applied"
	OutcomeApplyFailed Outcome = "apply_failed"
)

// Transition is delivered to the hook after every lifecycle change.
type Transition struct {
	Outcome    Outcome
	State      State
	Topic      string
	Title      string
	Anchor     int64
	MessageIds []int64
}

package topicassist

import "time"

// SuppressReason explains why a ready batch did not reach the oracle.
type SuppressReason string

const (
	ReasonCovered  SuppressReason = "already covered"
	ReasonInFlight SuppressReason = "in flight"
	ReasonCooldown SuppressReason = "cooldown"
)

type Decision struct {
	Allow  bool
	Reason SuppressReason
}

// Throttle decides whether a ready batch may trigger an oracle request now.
// Like Batch it relies on the Controller for serialization.
type Throttle struct {
	history   *History
	tokenizer *Tokenizer
	precheck  float64
	cooldown  time.Duration
	now       func() time.Time

	inFlight    bool
	lastRequest time.Time
}

func NewThrottle(history *History, tokenizer *Tokenizer, precheck float64, cooldown time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{
		history:   history,
		tokenizer: tokenizer,
		precheck:  precheck,
		cooldown:  cooldown,
		now:       now,
	}
}

// ShouldRequest evaluates the suppression rules in order; the first match wins.
func (t *Throttle) ShouldRequest(currentTopic string) Decision {
	if t.history.Covers(currentTopic, t.tokenizer, t.precheck) {
		return Decision{Reason: ReasonCovered}
	}
	if t.inFlight {
		return Decision{Reason: ReasonInFlight}
	}
	if !t.lastRequest.IsZero() && t.now().Sub(t.lastRequest) < t.cooldown {
		return Decision{Reason: ReasonCooldown}
	}
	return Decision{Allow: true}
}

// MarkDispatched must be called in the same critical section as the allowing
// ShouldRequest.
func (t *Throttle) MarkDispatched() {
	t.inFlight = true
	t.lastRequest = t.now()
}

func (t *Throttle) MarkResolved() {
	t.inFlight = false
}

// RestartCooldown starts a fresh cooldown window from now without a request.
func (t *Throttle) RestartCooldown() {
	t.lastRequest = t.now()
}

func (t *Throttle) InFlight() bool {
	return t.inFlight
}

func (t *Throttle) LastRequest() time.Time {
	return t.lastRequest
}

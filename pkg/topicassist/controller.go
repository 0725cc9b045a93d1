package topicassist

import (
	"context"
	"strings"
	"sync"
	"time"

	"ai-topic-assist-be/internal/pkg/logger"
)

const logModule = "TopicAssist"

// Controller owns the batching, throttling, history and the floating suggestion
// of one client session. All methods are safe for concurrent use; a single mutex
// serializes them so that an allow decision and the in-flight mark can never be
// separated by another event.
type Controller struct {
	mu sync.Mutex

	settings  Settings
	tokenizer *Tokenizer
	history   History
	batch     *Batch
	throttle  *Throttle

	current  *FloatingSuggestion
	applying bool
	closed   bool

	oracle    Oracle
	renamer   Renamer
	presenter Presenter
	logger    logger.ILogger
	hook      func(Transition)
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Controller)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTransitionHook registers a callback for lifecycle transitions. It runs
// outside the controller lock.
func WithTransitionHook(hook func(Transition)) Option {
	return func(c *Controller) {
		c.hook = hook
	}
}

// WithBaseContext bounds every oracle request by ctx in addition to Shutdown.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

func NewController(settings Settings, oracle Oracle, renamer Renamer, presenter Presenter, log logger.ILogger, opts ...Option) *Controller {
	settings = settings.withDefaults()
	if presenter == nil {
		presenter = nopPresenter{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	c := &Controller{
		settings:  settings,
		tokenizer: NewTokenizer(settings.MinWordLen, settings.Stopwords),
		batch:     NewBatch(settings.BatchThreshold, settings.MaxIdsSent),
		oracle:    oracle,
		renamer:   renamer,
		presenter: presenter,
		logger:    log,
		now:       time.Now,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.ctx)
	c.throttle = NewThrottle(&c.history, c.tokenizer, settings.PrecheckSimilarity, settings.CooldownWindow, c.now)

	return c
}

// RecordSend feeds the ids of a confirmed send into the batch. Once the batch is
// ready it is always consumed, and a request is dispatched if the throttle
// allows it. The returned bool is false when the batch was not evaluated.
func (c *Controller) RecordSend(topic string, messageIds []int64) (Decision, bool) {
	topic = strings.TrimSpace(topic)
	if topic == "" || len(messageIds) == 0 {
		return Decision{}, false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Decision{}, false
	}

	if c.batch.Record(topic, messageIds) {
		c.logger.Debug(logModule, "Topic switched, pending batch dropped", map[string]interface{}{"topic": topic})
	}
	if !c.batch.Ready() {
		c.mu.Unlock()
		return Decision{}, false
	}

	decision := c.throttle.ShouldRequest(topic)
	batch := c.batch.Take()
	if !decision.Allow {
		c.mu.Unlock()
		c.logger.Debug(logModule, "Suggestion request suppressed", map[string]interface{}{
			"reason":      string(decision.Reason),
			"topic":       topic,
			"message_ids": batch,
		})
		return decision, true
	}

	c.throttle.MarkDispatched()
	c.wg.Add(1)
	c.mu.Unlock()

	c.emit(Transition{Outcome: OutcomeRequested, State: StateRequested, Topic: topic, Anchor: Anchor(batch), MessageIds: batch})
	go c.dispatch(topic, batch)

	return decision, true
}

func (c *Controller) dispatch(topic string, batch []int64) {
	defer c.wg.Done()

	resp, err := c.oracle.SuggestTitle(c.ctx, SuggestRequest{MessageIds: batch, CurrentTitle: topic})
	c.resolve(topic, batch, resp, err)
}

// resolve consumes the single answer of a dispatched request.
func (c *Controller) resolve(topic string, batch []int64, resp SuggestResponse, err error) {
	c.mu.Lock()
	c.throttle.MarkResolved()

	if c.closed {
		c.mu.Unlock()
		return
	}

	anchor := Anchor(batch)
	if err != nil {
		// A failed request resolves like an empty answer.
		state := c.stateLocked()
		c.mu.Unlock()
		c.logger.Warn(logModule, "Suggestion request failed", map[string]interface{}{
			"error": err.Error(),
			"topic": topic,
		})
		c.emit(Transition{Outcome: OutcomeSuppressed, State: state, Topic: topic, Anchor: anchor, MessageIds: batch})
		return
	}

	title := strings.TrimSpace(resp.SuggestedTitle)

	switch {
	case title == "":
		state := c.stateLocked()
		c.mu.Unlock()
		c.logger.Debug(logModule, "Oracle returned no suggestion", map[string]interface{}{"topic": topic})
		c.emit(Transition{Outcome: OutcomeSuppressed, State: state, Topic: topic, Anchor: anchor, MessageIds: batch})
		return

	case c.history.Repeats(title) || c.tokenizer.Compare(title, topic) >= c.settings.PostcheckSimilarity:
		c.history.Remember(title)
		state := c.stateLocked()
		c.mu.Unlock()
		c.logger.Info(logModule, "Suggestion suppressed as near-duplicate", map[string]interface{}{
			"topic":     topic,
			"suggested": title,
		})
		c.emit(Transition{Outcome: OutcomeSuppressed, State: state, Topic: topic, Title: title, Anchor: anchor, MessageIds: batch})
		return

	case c.current != nil:
		// The panel already shows a suggestion the user has not answered.
		state := c.stateLocked()
		c.mu.Unlock()
		c.logger.Info(logModule, "Suggestion dropped, another one is showing", map[string]interface{}{
			"topic":     topic,
			"suggested": title,
		})
		c.emit(Transition{Outcome: OutcomeSuppressed, State: state, Topic: topic, Title: title, Anchor: anchor, MessageIds: batch})
		return
	}

	c.current = &FloatingSuggestion{Anchor: anchor, CurrentTopic: topic, SuggestedTitle: title}
	c.presenter.Show(*c.current)
	c.mu.Unlock()

	c.logger.Info(logModule, "Suggestion offered", map[string]interface{}{
		"topic":     topic,
		"suggested": title,
		"anchor":    anchor,
	})
	c.emit(Transition{Outcome: OutcomeOffered, State: StateOffered, Topic: topic, Title: title, Anchor: anchor, MessageIds: batch})
}

// Dismiss rejects the shown suggestion and remembers it so it is not offered
// again. It reports whether a suggestion was dismissed.
func (c *Controller) Dismiss() bool {
	c.mu.Lock()
	if c.current == nil || c.applying {
		c.mu.Unlock()
		c.logger.Debug(logModule, "Dismiss ignored, no suggestion offered", nil)
		return false
	}
	s := *c.current
	c.history.Remember(s.SuggestedTitle)
	c.current = nil
	c.presenter.Hide()
	c.mu.Unlock()

	c.emit(Transition{Outcome: OutcomeDismissed, State: StateIdle, Topic: s.CurrentTopic, Title: s.SuggestedTitle, Anchor: s.Anchor})
	return true
}

// Close hides the shown suggestion without remembering it.
func (c *Controller) Close() bool {
	c.mu.Lock()
	if c.current == nil || c.applying {
		c.mu.Unlock()
		c.logger.Debug(logModule, "Close ignored, no suggestion offered", nil)
		return false
	}
	s := *c.current
	c.current = nil
	c.presenter.Hide()
	c.mu.Unlock()

	c.emit(Transition{Outcome: OutcomeClosed, State: StateIdle, Topic: s.CurrentTopic, Title: s.SuggestedTitle, Anchor: s.Anchor})
	return true
}

// Apply renames the discussion forward from the suggestion's anchor to title
// and reports whether the rename happened. A blank title, or no offered
// suggestion, is a silent no-op. On failure the suggestion stays offered and
// the error is logged and returned; callers are not expected to show it to the
// user.
func (c *Controller) Apply(ctx context.Context, title string) (bool, error) {
	title = strings.TrimSpace(title)

	c.mu.Lock()
	if c.current == nil || c.applying {
		c.mu.Unlock()
		c.logger.Debug(logModule, "Apply ignored, no suggestion offered", nil)
		return false, nil
	}
	if title == "" {
		c.mu.Unlock()
		return false, nil
	}
	s := *c.current
	c.applying = true
	c.mu.Unlock()

	err := c.renamer.RenameTopic(ctx, RenameRequest{
		Anchor:        s.Anchor,
		Topic:         title,
		PropagateMode: PropagateChangeLater,
	})

	c.mu.Lock()
	c.applying = false
	if err != nil {
		state := c.stateLocked()
		c.mu.Unlock()
		c.logger.Error(logModule, "Topic rename failed", map[string]interface{}{
			"error":  err.Error(),
			"anchor": s.Anchor,
			"topic":  title,
		})
		c.emit(Transition{Outcome: OutcomeApplyFailed, State: state, Topic: s.CurrentTopic, Title: title, Anchor: s.Anchor})
		return false, err
	}

	c.history.Remember(title)
	c.batch.Clear()
	c.throttle.RestartCooldown()
	c.current = nil
	c.presenter.Hide()
	state := c.stateLocked()
	c.mu.Unlock()

	c.logger.Info(logModule, "Topic renamed from suggestion", map[string]interface{}{
		"anchor": s.Anchor,
		"from":   s.CurrentTopic,
		"to":     title,
	})
	c.emit(Transition{Outcome: OutcomeApplied, State: state, Topic: s.CurrentTopic, Title: title, Anchor: s.Anchor})
	return true, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.applying:
		return StateApplying
	case c.current != nil:
		return StateOffered
	case c.throttle.InFlight():
		return StateRequested
	default:
		return StateIdle
	}
}

// Current returns the suggestion being shown, if any.
func (c *Controller) Current() (FloatingSuggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return FloatingSuggestion{}, false
	}
	return *c.current, true
}

// LastSuggested returns the remembered suggestion title.
func (c *Controller) LastSuggested() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Last()
}

// Pending returns the number of ids waiting in the batch.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batch.Len()
}

func (c *Controller) Settings() Settings {
	return c.settings
}

// Wait blocks until no oracle request is outstanding.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Shutdown cancels an outstanding request, waits for it, and makes every later
// call a no-op. A new session needs a new Controller.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.current != nil {
		c.current = nil
		c.presenter.Hide()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Controller) emit(t Transition) {
	if c.hook != nil {
		c.hook(t)
	}
}

type nopPresenter struct{}

func (nopPresenter) Show(FloatingSuggestion) {}
func (nopPresenter) Hide()                   {}

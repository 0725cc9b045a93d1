package service

import (
	"context"
	"time"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/repository/memory"
	"ai-topic-assist-be/pkg/events"
	"ai-topic-assist-be/pkg/topicassist"

	"github.com/google/uuid"
)

const (
	EventSuggestionShow = "topic_suggestion.show"
	EventSuggestionHide = "topic_suggestion.hide"

	assistModule = "TopicAssist"
)

// SuggestionDelivery pushes typed events to a user's live connections.
// Implemented by the websocket hub.
type SuggestionDelivery interface {
	SendToUser(userId uuid.UUID, eventType string, data interface{})
}

// IAssistSessionService hosts one topic assistant per user on the server.
type IAssistSessionService interface {
	SendSink
	State(userId uuid.UUID) dto.TopicAssistStateResponse
	Apply(ctx context.Context, userId uuid.UUID, title string) (*dto.ApplySuggestionResponse, error)
	Dismiss(userId uuid.UUID) dto.TopicAssistActionResponse
	Close(userId uuid.UUID) dto.TopicAssistActionResponse
	EndSession(userId uuid.UUID)
	Shutdown()
}

type assistSessionService struct {
	sessions       *memory.AssistSessionRepository
	settings       topicassist.Settings
	improver       ITopicImproverService
	messages       IMessageService
	delivery       SuggestionDelivery
	eventPublisher events.Publisher
	logger         logger.ILogger
	baseCtx        context.Context
	cancel         context.CancelFunc
}

func NewAssistSessionService(
	sessions *memory.AssistSessionRepository,
	settings topicassist.Settings,
	improver ITopicImproverService,
	messages IMessageService,
	delivery SuggestionDelivery,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IAssistSessionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &assistSessionService{
		sessions:       sessions,
		settings:       settings,
		improver:       improver,
		messages:       messages,
		delivery:       delivery,
		eventPublisher: eventPublisher,
		logger:         log,
		baseCtx:        ctx,
		cancel:         cancel,
	}
}

func (s *assistSessionService) controller(userId uuid.UUID) *topicassist.Controller {
	return s.sessions.GetOrCreate(userId.String(), func() *topicassist.Controller {
		s.logger.Info(assistModule, "Assistant session started", map[string]interface{}{"user_id": userId})
		return topicassist.NewController(
			s.settings,
			improverOracle{svc: s.improver},
			messageRenamer{svc: s.messages, userId: userId},
			hubPresenter{delivery: s.delivery, userId: userId},
			s.logger,
			topicassist.WithBaseContext(s.baseCtx),
			topicassist.WithTransitionHook(s.transitionHook(userId)),
		)
	})
}

func (s *assistSessionService) RecordSend(userId uuid.UUID, topic string, messageIds []int64) {
	if userId == uuid.Nil {
		return
	}
	s.controller(userId).RecordSend(topic, messageIds)
}

func (s *assistSessionService) State(userId uuid.UUID) dto.TopicAssistStateResponse {
	ctrl, ok := s.sessions.Get(userId.String())
	if !ok {
		return dto.TopicAssistStateResponse{State: string(topicassist.StateIdle)}
	}

	res := dto.TopicAssistStateResponse{
		State:         string(ctrl.State()),
		LastSuggested: ctrl.LastSuggested(),
		Pending:       ctrl.Pending(),
	}
	if current, ok := ctrl.Current(); ok {
		res.Suggestion = toSuggestionResponse(current)
	}
	return res
}

func (s *assistSessionService) Apply(ctx context.Context, userId uuid.UUID, title string) (*dto.ApplySuggestionResponse, error) {
	ctrl, ok := s.sessions.Get(userId.String())
	if !ok {
		return &dto.ApplySuggestionResponse{State: string(topicassist.StateIdle)}, nil
	}

	applied, err := ctrl.Apply(ctx, title)
	res := &dto.ApplySuggestionResponse{Applied: applied, State: string(ctrl.State())}
	if applied {
		res.Title = ctrl.LastSuggested()
	}
	return res, err
}

func (s *assistSessionService) Dismiss(userId uuid.UUID) dto.TopicAssistActionResponse {
	ctrl, ok := s.sessions.Get(userId.String())
	if !ok {
		return dto.TopicAssistActionResponse{State: string(topicassist.StateIdle)}
	}
	changed := ctrl.Dismiss()
	return dto.TopicAssistActionResponse{Changed: changed, State: string(ctrl.State())}
}

func (s *assistSessionService) Close(userId uuid.UUID) dto.TopicAssistActionResponse {
	ctrl, ok := s.sessions.Get(userId.String())
	if !ok {
		return dto.TopicAssistActionResponse{State: string(topicassist.StateIdle)}
	}
	changed := ctrl.Close()
	return dto.TopicAssistActionResponse{Changed: changed, State: string(ctrl.State())}
}

func (s *assistSessionService) EndSession(userId uuid.UUID) {
	s.sessions.Delete(userId.String())
	s.logger.Info(assistModule, "Assistant session ended", map[string]interface{}{"user_id": userId})
}

func (s *assistSessionService) Shutdown() {
	s.cancel()
	s.sessions.Flush()
}

var transitionEvents = map[topicassist.Outcome]string{
	topicassist.OutcomeRequested: events.TOPIC_SUGGESTION_REQUESTED,
	topicassist.OutcomeOffered:   events.TOPIC_SUGGESTION_OFFERED,
	topicassist.OutcomeApplied:   events.TOPIC_SUGGESTION_APPLIED,
	topicassist.OutcomeDismissed: events.TOPIC_SUGGESTION_DISMISSED,
}

func (s *assistSessionService) transitionHook(userId uuid.UUID) func(topicassist.Transition) {
	return func(t topicassist.Transition) {
		eventType, ok := transitionEvents[t.Outcome]
		if !ok || s.eventPublisher == nil {
			return
		}
		evt := events.New(eventType, map[string]interface{}{
			"user_id":     userId.String(),
			"topic":       t.Topic,
			"title":       t.Title,
			"anchor_id":   t.Anchor,
			"message_ids": t.MessageIds,
			"state":       string(t.State),
		})
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				s.logger.Warn(assistModule, "Failed to publish assistant event", map[string]interface{}{
					"type":  eventType,
					"error": err.Error(),
				})
			}
		}()
	}
}

func toSuggestionResponse(f topicassist.FloatingSuggestion) *dto.FloatingSuggestionResponse {
	return &dto.FloatingSuggestionResponse{
		AnchorId:       f.Anchor,
		CurrentTopic:   f.CurrentTopic,
		SuggestedTitle: f.SuggestedTitle,
	}
}

// Adapters between the assistant core and the in-process services.

type improverOracle struct {
	svc ITopicImproverService
}

func (o improverOracle) SuggestTitle(ctx context.Context, req topicassist.SuggestRequest) (topicassist.SuggestResponse, error) {
	res, err := o.svc.SuggestTitle(ctx, &dto.SuggestTopicTitleRequest{
		MessageIds:   req.MessageIds,
		CurrentTitle: req.CurrentTitle,
	})
	if err != nil {
		return topicassist.SuggestResponse{}, err
	}
	return topicassist.SuggestResponse{SuggestedTitle: res.SuggestedTitle, AnchorId: res.AnchorId}, nil
}

type messageRenamer struct {
	svc    IMessageService
	userId uuid.UUID
}

func (r messageRenamer) RenameTopic(ctx context.Context, req topicassist.RenameRequest) error {
	_, err := r.svc.RenameTopic(ctx, r.userId, &dto.RenameTopicRequest{
		MessageId:     req.Anchor,
		Topic:         req.Topic,
		PropagateMode: req.PropagateMode,
	}, RenameSourceAssist)
	return err
}

type hubPresenter struct {
	delivery SuggestionDelivery
	userId   uuid.UUID
}

func (p hubPresenter) Show(f topicassist.FloatingSuggestion) {
	if p.delivery != nil {
		p.delivery.SendToUser(p.userId, EventSuggestionShow, dto.TopicSuggestionEvent{
			Type:       EventSuggestionShow,
			Suggestion: toSuggestionResponse(f),
		})
	}
}

func (p hubPresenter) Hide() {
	if p.delivery != nil {
		p.delivery.SendToUser(p.userId, EventSuggestionHide, dto.TopicSuggestionEvent{Type: EventSuggestionHide})
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/repository/specification"
	"ai-topic-assist-be/internal/repository/unitofwork"
	"ai-topic-assist-be/pkg/events"
	"ai-topic-assist-be/pkg/topicassist"

	"github.com/google/uuid"
)

const (
	PropagateChangeOne   = "change_one"
	PropagateChangeLater = topicassist.PropagateChangeLater
	PropagateChangeAll   = "change_all"

	RenameSourceManual = "manual"
	RenameSourceAssist = "topic_assist"

	messageModule = "MessageService"
)

type IMessageService interface {
	Send(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Show(ctx context.Context, id int64) (*dto.MessageResponse, error)
	RenameTopic(ctx context.Context, userId uuid.UUID, req *dto.RenameTopicRequest, source string) (*dto.RenameTopicResponse, error)
	RenameHistory(ctx context.Context, req *dto.TopicRenameHistoryRequest) ([]dto.TopicRenameResponse, error)
}

type messageService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   events.Publisher
	logger           logger.ILogger
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IMessageService {
	return &messageService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *messageService) Send(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}

	msg := &entity.Message{
		StreamId: req.StreamId,
		Topic:    topic,
		Content:  req.Content,
		SenderId: userId,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishMessageSent{
		MessageId: msg.Id,
		StreamId:  msg.StreamId,
		Topic:     msg.Topic,
		SenderId:  userId,
	})
	if err != nil {
		return nil, err
	}
	// The message is stored, a lost notification only costs a suggestion.
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn(messageModule, "Failed to publish message sent", map[string]interface{}{
			"message_id": msg.Id,
			"error":      err.Error(),
		})
	}

	return &dto.SendMessageResponse{
		Id:       msg.Id,
		StreamId: msg.StreamId,
		Topic:    msg.Topic,
	}, nil
}

func (s *messageService) Show(ctx context.Context, id int64) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	msg, err := uow.MessageRepository().FindOne(ctx, specification.ByMessageID{ID: id})
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	return &dto.MessageResponse{
		Id:        msg.Id,
		StreamId:  msg.StreamId,
		Topic:     msg.Topic,
		Content:   msg.Content,
		SenderId:  msg.SenderId,
		CreatedAt: msg.CreatedAt,
	}, nil
}

// RenameTopic moves the anchor message, and depending on the propagate mode
// the rest of its topic, to a new topic. Each rename is audited and announced.
func (s *messageService) RenameTopic(ctx context.Context, userId uuid.UUID, req *dto.RenameTopicRequest, source string) (*dto.RenameTopicResponse, error) {
	newTopic := strings.TrimSpace(req.Topic)
	if newTopic == "" {
		return nil, ErrTopicRequired
	}
	mode := req.PropagateMode
	if mode == "" {
		mode = PropagateChangeOne
	}
	if source == "" {
		source = RenameSourceManual
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	anchor, err := uow.MessageRepository().FindOne(ctx, specification.ByMessageID{ID: req.MessageId})
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		return nil, ErrMessageNotFound
	}

	var specs []specification.Specification
	switch mode {
	case PropagateChangeOne:
		specs = []specification.Specification{specification.ByMessageID{ID: anchor.Id}}
	case PropagateChangeLater:
		specs = []specification.Specification{
			specification.ByStream{StreamID: anchor.StreamId},
			specification.ByTopic{Topic: anchor.Topic},
			specification.FromMessageID{ID: anchor.Id},
		}
	case PropagateChangeAll:
		specs = []specification.Specification{
			specification.ByStream{StreamID: anchor.StreamId},
			specification.ByTopic{Topic: anchor.Topic},
		}
	default:
		return nil, ErrInvalidPropagate
	}

	res := &dto.RenameTopicResponse{
		MessageId:     anchor.Id,
		StreamId:      anchor.StreamId,
		OldTopic:      anchor.Topic,
		NewTopic:      newTopic,
		PropagateMode: mode,
	}
	if anchor.Topic == newTopic {
		return res, nil
	}

	affected, err := uow.MessageRepository().UpdateTopic(ctx, newTopic, specs...)
	if err != nil {
		return nil, fmt.Errorf("update topic: %w", err)
	}
	res.AffectedCount = affected

	if err := uow.TopicRenameRepository().Create(ctx, &entity.TopicRename{
		Id:              uuid.New(),
		AnchorMessageId: anchor.Id,
		StreamId:        anchor.StreamId,
		OldTopic:        anchor.Topic,
		NewTopic:        newTopic,
		PropagateMode:   mode,
		AffectedCount:   affected,
		RenamedBy:       userId,
		Metadata:        map[string]interface{}{"source": source},
	}); err != nil {
		return nil, fmt.Errorf("audit rename: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(messageModule, "Topic renamed", map[string]interface{}{
		"message_id": anchor.Id,
		"from":       anchor.Topic,
		"to":         newTopic,
		"mode":       mode,
		"affected":   affected,
		"source":     source,
	})

	if s.eventPublisher != nil {
		evt := events.New(events.TOPIC_RENAMED, map[string]interface{}{
			"message_id":     anchor.Id,
			"stream_id":      anchor.StreamId,
			"old_topic":      anchor.Topic,
			"new_topic":      newTopic,
			"propagate_mode": mode,
			"affected_count": affected,
			"user_id":        userId.String(),
			"source":         source,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn(messageModule, "Failed to publish TOPIC_RENAMED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return res, nil
}

// RenameHistory lists a stream's topic renames, newest first.
func (s *messageService) RenameHistory(ctx context.Context, req *dto.TopicRenameHistoryRequest) ([]dto.TopicRenameResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	renames, err := uow.TopicRenameRepository().FindAll(ctx,
		specification.ByStream{StreamID: req.StreamId},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.TopicRenameResponse, 0, len(renames))
	for _, r := range renames {
		source, _ := r.Metadata["source"].(string)
		res = append(res, dto.TopicRenameResponse{
			Id:              r.Id,
			AnchorMessageId: r.AnchorMessageId,
			StreamId:        r.StreamId,
			OldTopic:        r.OldTopic,
			NewTopic:        r.NewTopic,
			PropagateMode:   r.PropagateMode,
			AffectedCount:   r.AffectedCount,
			RenamedBy:       r.RenamedBy,
			Source:          source,
			CreatedAt:       r.CreatedAt,
		})
	}
	return res, nil
}

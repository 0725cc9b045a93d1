package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/pkg/events"
	pktNats "ai-topic-assist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const intakeModule = "SendIntake"

// SendSink receives confirmed sends, one call per send event.
type SendSink interface {
	RecordSend(userId uuid.UUID, topic string, messageIds []int64)
}

type IIntakeService interface {
	// Consume feeds sends stored by this server into the sink.
	Consume(ctx context.Context) error
	// StartExternal feeds MESSAGE_SENT events from other chat servers.
	StartExternal(sub *pktNats.Subscriber) error
}

type intakeService struct {
	subscriber message.Subscriber
	topicName  string
	sink       SendSink
	logger     logger.ILogger
}

func NewIntakeService(subscriber message.Subscriber, topicName string, sink SendSink, log logger.ILogger) IIntakeService {
	return &intakeService{
		subscriber: subscriber,
		topicName:  topicName,
		sink:       sink,
		logger:     log,
	}
}

func (s *intakeService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *intakeService) processMessage(msg *message.Message) {
	var payload dto.PublishMessageSent
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error(intakeModule, "Failed to unmarshal message sent", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads are never retried
		return
	}

	s.sink.RecordSend(payload.SenderId, payload.Topic, []int64{payload.MessageId})
	msg.Ack()
}

func (s *intakeService) StartExternal(sub *pktNats.Subscriber) error {
	if sub == nil {
		return fmt.Errorf("nil subscriber")
	}
	return sub.Subscribe(events.Subject(events.MESSAGE_SENT), "topic-assist-intake", s.handleExternal)
}

// handleExternal accepts {sender_id, topic, message_id} or {..., message_ids}.
func (s *intakeService) handleExternal(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	senderRaw, _ := payload["sender_id"].(string)
	senderId, err := uuid.Parse(senderRaw)
	if err != nil {
		s.logger.Warn(intakeModule, "MESSAGE_SENT without a valid sender_id", map[string]interface{}{"sender_id": senderRaw})
		return nil
	}
	topic, _ := payload["topic"].(string)

	var ids []int64
	if id, ok := payload["message_id"].(float64); ok {
		ids = append(ids, int64(id))
	}
	if list, ok := payload["message_ids"].([]interface{}); ok {
		for _, v := range list {
			if id, ok := v.(float64); ok {
				ids = append(ids, int64(id))
			}
		}
	}

	s.sink.RecordSend(senderId, topic, ids)
	return nil
}

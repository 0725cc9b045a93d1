package mapper

import (
	"time"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.Message{
		Id:        msg.Id,
		StreamId:  msg.StreamId,
		Topic:     msg.Topic,
		Content:   msg.Content,
		SenderId:  msg.SenderId,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.Message{
		Id:        msg.Id,
		StreamId:  msg.StreamId,
		Topic:     msg.Topic,
		Content:   msg.Content,
		SenderId:  msg.SenderId,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *MessageMapper) ToEntities(messages []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(messages))
	for i, msg := range messages {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	StreamId int64  `json:"stream_id" validate:"required"`
	Topic    string `json:"topic" validate:"required,max=255"`
	Content  string `json:"content" validate:"required"`
}

type SendMessageResponse struct {
	Id       int64  `json:"id"`
	StreamId int64  `json:"stream_id"`
	Topic    string `json:"topic"`
}

type MessageResponse struct {
	Id        int64     `json:"id"`
	StreamId  int64     `json:"stream_id"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	SenderId  uuid.UUID `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}

type RenameTopicRequest struct {
	MessageId     int64  `json:"-"`
	Topic         string `json:"topic" validate:"required,max=255"`
	PropagateMode string `json:"propagate_mode" validate:"omitempty,oneof=change_one change_later change_all"`
}

type RenameTopicResponse struct {
	MessageId     int64  `json:"message_id"`
	StreamId      int64  `json:"stream_id"`
	OldTopic      string `json:"old_topic"`
	NewTopic      string `json:"new_topic"`
	PropagateMode string `json:"propagate_mode"`
	AffectedCount int64  `json:"affected_count"`
}

// PublishMessageSent is the in-process payload announcing a stored message.
type PublishMessageSent struct {
	MessageId int64     `json:"message_id"`
	StreamId  int64     `json:"stream_id"`
	Topic     string    `json:"topic"`
	SenderId  uuid.UUID `json:"sender_id"`
}

type TopicRenameHistoryRequest struct {
	StreamId int64 `query:"stream_id" validate:"required"`
	Limit    int   `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int   `query:"offset" validate:"omitempty,min=0"`
}

type TopicRenameResponse struct {
	Id              uuid.UUID `json:"id"`
	AnchorMessageId int64     `json:"anchor_message_id"`
	StreamId        int64     `json:"stream_id"`
	OldTopic        string    `json:"old_topic"`
	NewTopic        string    `json:"new_topic"`
	PropagateMode   string    `json:"propagate_mode"`
	AffectedCount   int64     `json:"affected_count"`
	RenamedBy       uuid.UUID `json:"renamed_by"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

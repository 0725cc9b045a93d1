package model

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	StreamId  int64     `gorm:"not null;index:idx_messages_stream_topic"`
	Topic     string    `gorm:"type:varchar(255);not null;index:idx_messages_stream_topic"`
	Content   string    `gorm:"type:text;not null"`
	SenderId  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id        int64
	StreamId  int64
	Topic     string
	Content   string
	SenderId  uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}

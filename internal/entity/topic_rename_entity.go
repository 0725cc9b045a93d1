package entity

import (
	"time"

	"github.com/google/uuid"
)

// TopicRename is the audit record of one topic move.
type TopicRename struct {
	Id              uuid.UUID
	AnchorMessageId int64
	StreamId        int64
	OldTopic        string
	NewTopic        string
	PropagateMode   string
	AffectedCount   int64
	RenamedBy       uuid.UUID
	Metadata        map[string]interface{}
	CreatedAt       time.Time
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TopicRename struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnchorMessageId int64          `gorm:"not null;index"`
	StreamId        int64          `gorm:"not null;index"`
	OldTopic        string         `gorm:"type:varchar(255);not null"`
	NewTopic        string         `gorm:"type:varchar(255);not null"`
	PropagateMode   string         `gorm:"type:varchar(20);not null"`
	AffectedCount   int64          `gorm:"not null;default:0"`
	RenamedBy       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Metadata        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

func (TopicRename) TableName() string {
	return "topic_renames"
}

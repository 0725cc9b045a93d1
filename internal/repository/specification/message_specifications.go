package specification

import (
	"gorm.io/gorm"
)

type ByMessageID struct {
	ID int64
}

func (s ByMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type ByMessageIDs struct {
	IDs []int64
}

func (s ByMessageIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

type ByStream struct {
	StreamID int64
}

func (s ByStream) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stream_id = ?", s.StreamID)
}

// ByTopic matches topics case-insensitively, the way topic names are compared
// everywhere else.
type ByTopic struct {
	Topic string
}

func (s ByTopic) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(topic) = LOWER(?)", s.Topic)
}

// FromMessageID keeps messages at or after the given id.
type FromMessageID struct {
	ID int64
}

func (s FromMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id >= ?", s.ID)
}

type ByAnchorMessageID struct {
	ID int64
}

func (s ByAnchorMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("anchor_message_id = ?", s.ID)
}

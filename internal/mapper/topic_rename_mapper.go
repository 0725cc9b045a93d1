package mapper

import (
	"encoding/json"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/model"

	"gorm.io/datatypes"
)

type TopicRenameMapper struct{}

func NewTopicRenameMapper() *TopicRenameMapper {
	return &TopicRenameMapper{}
}

func (m *TopicRenameMapper) ToEntity(r *model.TopicRename) *entity.TopicRename {
	if r == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(r.Metadata) > 0 {
		// Malformed metadata is dropped rather than failing the read.
		_ = json.Unmarshal(r.Metadata, &metadata)
	}

	return &entity.TopicRename{
		Id:              r.Id,
		AnchorMessageId: r.AnchorMessageId,
		StreamId:        r.StreamId,
		OldTopic:        r.OldTopic,
		NewTopic:        r.NewTopic,
		PropagateMode:   r.PropagateMode,
		AffectedCount:   r.AffectedCount,
		RenamedBy:       r.RenamedBy,
		Metadata:        metadata,
		CreatedAt:       r.CreatedAt,
	}
}

func (m *TopicRenameMapper) ToModel(r *entity.TopicRename) *model.TopicRename {
	if r == nil {
		return nil
	}

	var metadata datatypes.JSON
	if r.Metadata != nil {
		if raw, err := json.Marshal(r.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.TopicRename{
		Id:              r.Id,
		AnchorMessageId: r.AnchorMessageId,
		StreamId:        r.StreamId,
		OldTopic:        r.OldTopic,
		NewTopic:        r.NewTopic,
		PropagateMode:   r.PropagateMode,
		AffectedCount:   r.AffectedCount,
		RenamedBy:       r.RenamedBy,
		Metadata:        metadata,
		CreatedAt:       r.CreatedAt,
	}
}

func (m *TopicRenameMapper) ToEntities(renames []*model.TopicRename) []*entity.TopicRename {
	entities := make([]*entity.TopicRename, len(renames))
	for i, r := range renames {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

package mapper

import (
	"testing"
	"time"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMessageMapperZeroUpdatedAt(t *testing.T) {
	m := NewMessageMapper()

	e := m.ToEntity(&model.Message{Id: 7, StreamId: 1, Topic: "release", Content: "hi", CreatedAt: time.Now()})
	require.NotNil(t, e)
	assert.Nil(t, e.UpdatedAt)
	assert.Equal(t, int64(7), e.Id)

	back := m.ToModel(e)
	assert.True(t, back.UpdatedAt.IsZero())
	assert.Nil(t, m.ToEntity(nil))
}

func TestTopicRenameMapperMetadata(t *testing.T) {
	m := NewTopicRenameMapper()
	by := uuid.New()

	mod := m.ToModel(&entity.TopicRename{
		RenamedBy: by,
		OldTopic:  "refactor plan",
		NewTopic:  "deployment strategy",
		Metadata:  map[string]interface{}{"source": "assistant"},
	})
	assert.JSONEq(t, `{"source":"assistant"}`, string(mod.Metadata))

	e := m.ToEntity(mod)
	assert.Equal(t, "assistant", e.Metadata["source"])
	assert.Equal(t, by, e.RenamedBy)

	broken := m.ToEntity(&model.TopicRename{Metadata: datatypes.JSON(`{nope`)})
	assert.Nil(t, broken.Metadata)
}

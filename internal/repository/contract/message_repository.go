package contract

import (
	"context"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	// FindByIds returns the messages in the order of ids. Unknown ids are skipped.
	FindByIds(ctx context.Context, ids []int64) ([]*entity.Message, error)
	// UpdateTopic moves every message matched by specs to topic and returns how
	// many rows changed.
	UpdateTopic(ctx context.Context, topic string, specs ...specification.Specification) (int64, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

package contract

import (
	"context"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/repository/specification"
)

type TopicRenameRepository interface {
	Create(ctx context.Context, rename *entity.TopicRename) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TopicRename, error)
}

package implementation

import (
	"context"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/mapper"
	"ai-topic-assist-be/internal/model"
	"ai-topic-assist-be/internal/repository/contract"
	"ai-topic-assist-be/internal/repository/scope"
	"ai-topic-assist-be/internal/repository/specification"

	"gorm.io/gorm"
)

type TopicRenameRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TopicRenameMapper
}

func NewTopicRenameRepository(db *gorm.DB) contract.TopicRenameRepository {
	return &TopicRenameRepositoryImpl{
		db:     db,
		mapper: mapper.NewTopicRenameMapper(),
	}
}

func (r *TopicRenameRepositoryImpl) Create(ctx context.Context, rename *entity.TopicRename) error {
	m := r.mapper.ToModel(rename)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*rename = *r.mapper.ToEntity(m)
	return nil
}

// FindAll returns audit rows newest first.
func (r *TopicRenameRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TopicRename, error) {
	var models []*model.TopicRename
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

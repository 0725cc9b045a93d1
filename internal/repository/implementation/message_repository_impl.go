package implementation

import (
	"context"
	"errors"

	"ai-topic-assist-be/internal/entity"
	"ai-topic-assist-be/internal/mapper"
	"ai-topic-assist-be/internal/model"
	"ai-topic-assist-be/internal/repository/contract"
	"ai-topic-assist-be/internal/repository/specification"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	var m model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MessageRepositoryImpl) FindByIds(ctx context.Context, ids []int64) ([]*entity.Message, error) {
	if len(ids) == 0 {
		return []*entity.Message{}, nil
	}

	found, err := r.FindAll(ctx, specification.ByMessageIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	return OrderByIds(found, ids), nil
}

func (r *MessageRepositoryImpl) UpdateTopic(ctx context.Context, topic string, specs ...specification.Specification) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	result := query.Update("topic", topic)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// OrderByIds arranges messages in the order of ids, skipping ids with no
// message. A repeated id yields the message again.
func OrderByIds(messages []*entity.Message, ids []int64) []*entity.Message {
	byId := make(map[int64]*entity.Message, len(messages))
	for _, m := range messages {
		byId[m.Id] = m
	}

	ordered := make([]*entity.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := byId[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered
}

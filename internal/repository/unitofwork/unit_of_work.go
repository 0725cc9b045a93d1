package unitofwork

import (
	"context"

	"ai-topic-assist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	MessageRepository() contract.MessageRepository
	TopicRenameRepository() contract.TopicRenameRepository
}

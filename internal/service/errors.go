package service

import "errors"

var (
	ErrMessageIdsRequired = errors.New("message_id or message_ids is required")
	ErrTooManyMessages    = errors.New("too many messages requested")
	ErrMessageNotFound    = errors.New("message not found")
	ErrTopicRequired      = errors.New("topic is required")
	ErrInvalidPropagate   = errors.New("propagate_mode must be change_one, change_later or change_all")
	ErrNoSession          = errors.New("no topic assistant session")
)

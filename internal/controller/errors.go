package controller

import (
	"errors"

	"ai-topic-assist-be/internal/pkg/serverutils"
	"ai-topic-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError gives service sentinel errors their HTTP status. Anything
// unknown stays a 500.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrMessageIdsRequired),
		errors.Is(err, service.ErrTooManyMessages),
		errors.Is(err, service.ErrTopicRequired),
		errors.Is(err, service.ErrInvalidPropagate):
		return serverutils.NewBadRequestError(err.Error())
	case errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrNoSession):
		return serverutils.NewNotFoundError(err.Error())
	default:
		return serverutils.Wrap(fiber.StatusInternalServerError, err)
	}
}

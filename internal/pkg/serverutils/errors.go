package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError carries the HTTP status a service error should be answered with.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Message: message}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusInternalServerError, Message: message, Err: err}
}

// Wrap maps err to an AppError with code unless it already is one.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return &AppError{Code: code, Message: err.Error(), Err: err}
}

// ErrorHandlerMiddleware turns errors returned by later handlers into the
// standard error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var appErr *AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			code = appErr.Code
			message = appErr.Message
			if code < fiber.StatusInternalServerError && appErr.Err != nil {
				message = appErr.Error()
			}
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

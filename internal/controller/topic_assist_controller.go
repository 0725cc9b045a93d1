package controller

import (
	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/serverutils"
	"ai-topic-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITopicAssistController interface {
	RegisterRoutes(r fiber.Router)
	State(ctx *fiber.Ctx) error
	Apply(ctx *fiber.Ctx) error
	Dismiss(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
}

type topicAssistController struct {
	service service.IAssistSessionService
}

// NewTopicAssistController serves the server-hosted assistant. A nil service
// means sessions are disabled and every route answers 404.
func NewTopicAssistController(service service.IAssistSessionService) ITopicAssistController {
	return &topicAssistController{service: service}
}

func (c *topicAssistController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/topic-assist/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Use(c.requireSessions)
	h.Get("/state", c.State)
	h.Post("/apply", c.Apply)
	h.Post("/dismiss", c.Dismiss)
	h.Post("/close", c.Close)
	h.Delete("/session", c.EndSession)
}

func (c *topicAssistController) requireSessions(ctx *fiber.Ctx) error {
	if c.service == nil {
		return mapServiceError(service.ErrNoSession)
	}
	return ctx.Next()
}

func (c *topicAssistController) State(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get assistant state", c.service.State(userId)))
}

// Apply answers 200 even when the rename fails. The service error is discarded
// on purpose: the failure is already in the diagnostic log, the suggestion stays
// offered and the response carries applied=false.
func (c *topicAssistController) Apply(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ApplySuggestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("Invalid request body")
	}

	res, _ := c.service.Apply(ctx.UserContext(), userId, req.Title)
	return ctx.JSON(serverutils.SuccessResponse("Success apply suggestion", res))
}

func (c *topicAssistController) Dismiss(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success dismiss suggestion", c.service.Dismiss(userId)))
}

func (c *topicAssistController) Close(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success close suggestion", c.service.Close(userId)))
}

func (c *topicAssistController) EndSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	c.service.EndSession(userId)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success end assistant session", nil))
}

package controller

import (
	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/serverutils"
	"ai-topic-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAiController interface {
	RegisterRoutes(r fiber.Router)
	SuggestTopicTitle(ctx *fiber.Ctx) error
	MessageRecap(ctx *fiber.Ctx) error
}

type aiController struct {
	improver service.ITopicImproverService
	recap    service.IRecapService
}

func NewAiController(improver service.ITopicImproverService, recap service.IRecapService) IAiController {
	return &aiController{
		improver: improver,
		recap:    recap,
	}
}

func (c *aiController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/suggest-topic-title", c.SuggestTopicTitle)
	h.Post("/message-recap", c.MessageRecap)
}

func (c *aiController) SuggestTopicTitle(ctx *fiber.Ctx) error {
	var req dto.SuggestTopicTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("Invalid request body")
	}

	res, err := c.improver.SuggestTitle(ctx.UserContext(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success suggest topic title", res))
}

func (c *aiController) MessageRecap(ctx *fiber.Ctx) error {
	var req dto.MessageRecapRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("Invalid request body")
	}

	res, err := c.recap.Recap(ctx.UserContext(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success recap messages", res))
}

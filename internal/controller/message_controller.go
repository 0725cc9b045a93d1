package controller

import (
	"strconv"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/serverutils"
	"ai-topic-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	RenameTopic(ctx *fiber.Ctx) error
	RenameHistory(ctx *fiber.Ctx) error
}

type messageController struct {
	service service.IMessageService
}

func NewMessageController(service service.IMessageService) IMessageController {
	return &messageController{service: service}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/message/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Send)
	h.Get("/renames", c.RenameHistory)
	h.Get(":id", c.Show)
	h.Patch(":id", c.RenameTopic)
}

func (c *messageController) Send(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Send(ctx.UserContext(), userId, &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *messageController) Show(ctx *fiber.Ctx) error {
	id, err := messageIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.UserContext(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show message", res))
}

func (c *messageController) RenameTopic(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}
	id, err := messageIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameTopicRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("Invalid request body")
	}
	req.MessageId = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RenameTopic(ctx.UserContext(), userId, &req, service.RenameSourceManual)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename topic", res))
}

func (c *messageController) RenameHistory(ctx *fiber.Ctx) error {
	var req dto.TopicRenameHistoryRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.NewBadRequestError("Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RenameHistory(ctx.UserContext(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get rename history", res))
}

func messageIdParam(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, serverutils.NewBadRequestError("Invalid message id")
	}
	return id, nil
}

package controller

import (
	"strings"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IDiagnosticsController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type diagnosticsController struct {
	logger logger.ILogger
}

// NewDiagnosticsController exposes the assistant's diagnostic log to operators.
func NewDiagnosticsController(diagLogger logger.ILogger) IDiagnosticsController {
	return &diagnosticsController{logger: diagLogger}
}

func (c *diagnosticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/diagnostics/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *diagnosticsController) GetLogs(ctx *fiber.Ctx) error {
	level := strings.ToUpper(ctx.Query("level"))
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := c.logger.GetLogs(level, limit, offset)
	if err != nil {
		return serverutils.NewInternalError("Failed to read logs", err)
	}

	res := make([]dto.LogListResponse, len(entries))
	for i, e := range entries {
		res[i] = toLogListResponse(e)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get logs", res))
}

func (c *diagnosticsController) GetLogDetail(ctx *fiber.Ctx) error {
	entry, err := c.logger.GetLogById(ctx.Params("id"))
	if err != nil || entry == nil {
		return serverutils.NewNotFoundError("Log not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get log detail", dto.LogDetailResponse{
		LogListResponse: toLogListResponse(*entry),
		Details:         entry.Details,
	}))
}

func toLogListResponse(e logger.LogEntry) dto.LogListResponse {
	return dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		Timestamp: e.Timestamp,
	}
}

package handler

import (
	"os"
	"strings"

	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/pkg/serverutils"
	internalWS "ai-topic-assist-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const pushModule = "PushHandler"

// PushHandler upgrades authenticated clients to the websocket that carries
// topic suggestion events.
type PushHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewPushHandler(hub *internalWS.Hub, log logger.ILogger) *PushHandler {
	return &PushHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *PushHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake, so the query wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return serverutils.NewUnauthorizedError("Missing token (query 'token' or header 'Authorization')")
	}

	userIDStr, err := serverutils.ParseToken(tokenStr, os.Getenv("JWT_SECRET"))
	if err != nil {
		h.logger.Warn(pushModule, "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return serverutils.NewUnauthorizedError("Invalid token")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return serverutils.NewUnauthorizedError("Invalid user ID format in token")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info(pushModule, "Starting websocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info(pushModule, "Websocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

// Status reports how many live connections the caller has on this instance.
func (h *PushHandler) Status(c *fiber.Ctx) error {
	userID, err := serverutils.UserId(c)
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Success get push status", fiber.Map{
		"connections": h.hub.ConnectedClients(userID),
	}))
}

func (h *PushHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
	router.Get("/ws/status", serverutils.JwtMiddleware, h.Status)
}

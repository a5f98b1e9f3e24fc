package handler

import (
	"hello-ai-be/internal/pkg/logger"
	"hello-ai-be/internal/pkg/serverutils"
	internalWS "hello-ai-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// BoardHandler upgrades authenticated connections into board watchers.
type BoardHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewBoardHandler(hub *internalWS.Hub, log logger.ILogger) *BoardHandler {
	return &BoardHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *BoardHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/board/v1/ws", h.ServeWs)
}

// ServeWs authenticates the handshake and hands the connection to the
// hub. Browsers cannot set headers on websocket upgrades, so the token
// arrives in the query string; tooling may use the Authorization header.
func (h *BoardHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	claims, err := serverutils.ParseAccessToken(tokenStr)
	if err != nil {
		h.logger.Warn("BoardHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	userIdStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("BoardHandler", "Board session started", map[string]interface{}{"user_id": userId.String()})
			internalWS.ServeWs(h.hub, conn, userId)
			h.logger.Info("BoardHandler", "Board session ended", map[string]interface{}{"user_id": userId.String()})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

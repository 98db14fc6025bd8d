package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

type ChatHandler struct {
	Handler
	chat *service.ChatService
}

func NewChatHandler(s *server.Server, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		Handler: NewHandler(s),
		chat:    chat,
	}
}

func (h *ChatHandler) Reply(c echo.Context, p *model.ChatPayload) (*model.ChatReply, error) {
	return h.chat.Reply(c.Request().Context(), p)
}

package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

type ContactHandler struct {
	Handler
	contact *service.ContactService
}

func NewContactHandler(s *server.Server, contact *service.ContactService) *ContactHandler {
	return &ContactHandler{
		Handler: NewHandler(s),
		contact: contact,
	}
}

func (h *ContactHandler) Submit(c echo.Context, p *model.ContactPayload) (*model.ContactMessage, error) {
	return h.contact.Submit(c.Request().Context(), p)
}

func (h *ContactHandler) List(c echo.Context, q *model.PageQuery) (*model.PaginatedResponse[model.ContactMessage], error) {
	page, limit := q.Values()
	return h.contact.List(c.Request().Context(), page, limit)
}

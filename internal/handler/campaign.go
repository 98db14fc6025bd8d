package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// CampaignHandler serves newsletter subscriptions and the admin campaigns.
type CampaignHandler struct {
	Handler
	campaigns *service.CampaignService
}

func NewCampaignHandler(s *server.Server, campaigns *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		Handler:   NewHandler(s),
		campaigns: campaigns,
	}
}

func (h *CampaignHandler) Subscribe(c echo.Context, p *model.SubscribePayload) (*model.Subscriber, error) {
	return h.campaigns.Subscribe(c.Request().Context(), p)
}

func (h *CampaignHandler) Unsubscribe(c echo.Context, p *model.UnsubscribePayload) error {
	return h.campaigns.Unsubscribe(c.Request().Context(), p)
}

func (h *CampaignHandler) Create(c echo.Context, p *model.CreateCampaignPayload) (*model.Campaign, error) {
	return h.campaigns.Create(c.Request().Context(), p)
}

func (h *CampaignHandler) List(c echo.Context, _ *model.EmptyRequest) ([]model.Campaign, error) {
	return h.campaigns.List(c.Request().Context())
}

func (h *CampaignHandler) Send(c echo.Context, r *model.CampaignIDRequest) (*model.SendCampaignResult, error) {
	return h.campaigns.Send(c.Request().Context(), r.CampaignID())
}

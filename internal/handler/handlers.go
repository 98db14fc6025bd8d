package handler

import (
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Order    *OrderHandler
	Account  *AccountHandler
	Contact  *ContactHandler
	Campaign *CampaignHandler
	Chat     *ChatHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Catalog:  NewCatalogHandler(s, services.Catalog),
		Cart:     NewCartHandler(s, services.Cart),
		Checkout: NewCheckoutHandler(s, services.Checkout),
		Order:    NewOrderHandler(s, services.Order, services.LiveFeed),
		Account:  NewAccountHandler(s, services.Account),
		Contact:  NewContactHandler(s, services.Contact),
		Campaign: NewCampaignHandler(s, services.Campaign),
		Chat:     NewChatHandler(s, services.Chat),
	}
}

package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/handler"
	"github.com/deppfellow/storefront/internal/lib/export"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
)

// registerAdminRoutes mounts /api/admin behind the Clerk admin role.
func registerAdminRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	// Browsers cannot set headers on a websocket upgrade, so the live feed
	// takes the session token from ?token=.
	api.GET("/admin/orders/live", h.Order.Live, middleware.TokenFromQuery, m.Auth.RequireAdmin)

	admin := api.Group("/admin", m.Auth.RequireAdmin)

	catalog := h.Catalog
	admin.GET("/products", handler.Handle(catalog.Handler, catalog.ListAllProducts, http.StatusOK, &model.ListProductsQuery{}))
	admin.GET("/products/export", handler.HandleFile(catalog.Handler, catalog.ExportProducts, http.StatusOK, &model.EmptyRequest{},
		handler.ProductsFilename, export.ContentType))
	admin.GET("/products/:id", handler.Handle(catalog.Handler, catalog.GetProductByID, http.StatusOK, &model.ProductIDRequest{}))
	admin.POST("/products", handler.Handle(catalog.Handler, catalog.CreateProduct, http.StatusCreated, &model.CreateProductPayload{}))
	admin.PATCH("/products/:id", handler.Handle(catalog.Handler, catalog.UpdateProduct, http.StatusOK, &model.UpdateProductPayload{}))
	admin.DELETE("/products/:id", handler.HandleNoContent(catalog.Handler, catalog.DeleteProduct, http.StatusNoContent, &model.ProductIDRequest{}))
	admin.POST("/products/:id/stock", handler.Handle(catalog.Handler, catalog.AdjustStock, http.StatusOK, &model.AdjustStockPayload{}))
	admin.POST("/products/:id/images", handler.Handle(catalog.Handler, catalog.CreateImageUploadURL, http.StatusCreated, &model.ImageUploadPayload{}))

	orders := h.Order
	admin.GET("/orders", handler.Handle(orders.Handler, orders.ListOrders, http.StatusOK, &model.ListOrdersQuery{}))
	admin.GET("/orders/export", handler.HandleFile(orders.Handler, orders.ExportOrders, http.StatusOK, &model.ExportOrdersQuery{},
		handler.OrdersFilename, export.ContentType))
	admin.GET("/orders/:id", handler.Handle(orders.Handler, orders.GetOrder, http.StatusOK, &model.OrderIDRequest{}))
	admin.PATCH("/orders/:id/status", handler.Handle(orders.Handler, orders.UpdateStatus, http.StatusOK, &model.UpdateOrderStatusPayload{}))

	campaign := h.Campaign
	admin.GET("/campaigns", handler.Handle(campaign.Handler, campaign.List, http.StatusOK, &model.EmptyRequest{}))
	admin.POST("/campaigns", handler.Handle(campaign.Handler, campaign.Create, http.StatusCreated, &model.CreateCampaignPayload{}))
	admin.POST("/campaigns/:id/send", handler.Handle(campaign.Handler, campaign.Send, http.StatusOK, &model.CampaignIDRequest{}))

	contact := h.Contact
	admin.GET("/contact-messages", handler.Handle(contact.Handler, contact.List, http.StatusOK, &model.PageQuery{}))
}

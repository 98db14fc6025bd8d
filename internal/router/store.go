package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/handler"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
)

// Per client IP, per minute.
const (
	chatbotPerMinute  = 20
	contactPerMinute  = 5
	authPerMinute     = 10
	checkoutPerMinute = 10
)

// registerStoreRoutes mounts the public storefront API. Cart aware routes
// read the X-Cart-Token header and an optional customer bearer token.
func registerStoreRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	shopper := []echo.MiddlewareFunc{m.Auth.OptionalCustomer, middleware.CartToken}

	catalog := h.Catalog
	api.GET("/products", handler.Handle(catalog.Handler, catalog.ListProducts, http.StatusOK, &model.ListProductsQuery{}))
	api.GET("/products/:slug", handler.Handle(catalog.Handler, catalog.GetProduct, http.StatusOK, &model.GetProductRequest{}))
	api.GET("/collections", handler.Handle(catalog.Handler, catalog.ListCollections, http.StatusOK, &model.EmptyRequest{}))

	cartHandler := h.Cart
	cart := api.Group("/cart", shopper...)
	cart.GET("", handler.Handle(cartHandler.Handler, cartHandler.GetCart, http.StatusOK, &model.EmptyRequest{}))
	cart.DELETE("", handler.Handle(cartHandler.Handler, cartHandler.Clear, http.StatusOK, &model.EmptyRequest{}))
	cart.POST("/items", handler.Handle(cartHandler.Handler, cartHandler.AddItem, http.StatusOK, &model.AddCartItemPayload{}))
	cart.PUT("/items/:product_id", handler.Handle(cartHandler.Handler, cartHandler.UpdateItem, http.StatusOK, &model.UpdateCartItemPayload{}))
	cart.DELETE("/items/:product_id", handler.Handle(cartHandler.Handler, cartHandler.RemoveItem, http.StatusOK, &model.CartItemRequest{}))

	checkout := h.Checkout
	api.POST("/checkout",
		handler.Handle(checkout.Handler, checkout.StartCheckout, http.StatusCreated, &model.CheckoutPayload{}),
		append([]echo.MiddlewareFunc{m.RateLimit.Limit("checkout", checkoutPerMinute, 3)}, shopper...)...)
	api.GET("/checkout/acceptance", handler.Handle(checkout.Handler, checkout.GetAcceptanceToken, http.StatusOK, &model.EmptyRequest{}))
	api.GET("/checkout/confirm", handler.Handle(checkout.Handler, checkout.ConfirmPayment, http.StatusOK, &model.ConfirmPaymentQuery{}))
	api.POST("/webhooks/wompi", checkout.Webhook)

	orders := h.Order
	api.GET("/orders/track", handler.Handle(orders.Handler, orders.TrackOrder, http.StatusOK, &model.TrackOrderQuery{}))
	api.GET("/me/orders", handler.Handle(orders.Handler, orders.ListMyOrders, http.StatusOK, &model.EmptyRequest{}), m.Auth.RequireCustomer)

	account := h.Account
	auth := api.Group("/auth")
	authLimit := m.RateLimit.Limit("auth", authPerMinute, 5)
	auth.POST("/register", handler.Handle(account.Handler, account.Register, http.StatusCreated, &model.RegisterPayload{}), authLimit, middleware.CartToken)
	auth.POST("/login", handler.Handle(account.Handler, account.Login, http.StatusOK, &model.LoginPayload{}), authLimit, middleware.CartToken)
	auth.GET("/me", handler.Handle(account.Handler, account.Me, http.StatusOK, &model.EmptyRequest{}), m.Auth.RequireCustomer)

	contact := h.Contact
	api.POST("/contact",
		handler.Handle(contact.Handler, contact.Submit, http.StatusCreated, &model.ContactPayload{}),
		m.RateLimit.Limit("contact", contactPerMinute, 2))

	campaign := h.Campaign
	newsletterLimit := m.RateLimit.Limit("newsletter", contactPerMinute, 2)
	api.POST("/newsletter/subscribe", handler.Handle(campaign.Handler, campaign.Subscribe, http.StatusCreated, &model.SubscribePayload{}), newsletterLimit)
	api.POST("/newsletter/unsubscribe", handler.HandleNoContent(campaign.Handler, campaign.Unsubscribe, http.StatusNoContent, &model.UnsubscribePayload{}), newsletterLimit)

	chat := h.Chat
	api.POST("/chatbot/messages",
		handler.Handle(chat.Handler, chat.Reply, http.StatusOK, &model.ChatPayload{}),
		m.RateLimit.Limit("chatbot", chatbotPerMinute, 5))
}

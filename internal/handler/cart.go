package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// CartHandler serves the cart routes. Guests are identified by the
// X-Cart-Token header, which every cart response echoes back.
type CartHandler struct {
	Handler
	carts *service.CartService
}

func NewCartHandler(s *server.Server, carts *service.CartService) *CartHandler {
	return &CartHandler{
		Handler: NewHandler(s),
		carts:   carts,
	}
}

// cartRef identifies the cart of the request: the token header and the
// signed-in customer, when there is one.
func cartRef(c echo.Context) model.CartRef {
	return model.CartRef{
		Token:  middleware.GetCartToken(c),
		UserID: middleware.GetCustomerID(c),
	}
}

func withCartToken(c echo.Context, view model.CartView, err error) (model.CartView, error) {
	if err == nil && view.Token != "" {
		c.Response().Header().Set(middleware.CartTokenHeader, view.Token)
	}
	return view, err
}

func (h *CartHandler) GetCart(c echo.Context, _ *model.EmptyRequest) (model.CartView, error) {
	view, err := h.carts.GetCart(c.Request().Context(), cartRef(c))
	return withCartToken(c, view, err)
}

func (h *CartHandler) AddItem(c echo.Context, p *model.AddCartItemPayload) (model.CartView, error) {
	view, err := h.carts.AddItem(c.Request().Context(), cartRef(c), uuid.MustParse(p.ProductID), p.Quantity)
	return withCartToken(c, view, err)
}

func (h *CartHandler) UpdateItem(c echo.Context, p *model.UpdateCartItemPayload) (model.CartView, error) {
	view, err := h.carts.UpdateItem(c.Request().Context(), cartRef(c), uuid.MustParse(p.ProductID), p.Quantity)
	return withCartToken(c, view, err)
}

func (h *CartHandler) RemoveItem(c echo.Context, r *model.CartItemRequest) (model.CartView, error) {
	view, err := h.carts.RemoveItem(c.Request().Context(), cartRef(c), uuid.MustParse(r.ProductID))
	return withCartToken(c, view, err)
}

func (h *CartHandler) Clear(c echo.Context, _ *model.EmptyRequest) (model.CartView, error) {
	view, err := h.carts.Clear(c.Request().Context(), cartRef(c))
	return withCartToken(c, view, err)
}

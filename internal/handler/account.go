package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// AccountHandler serves customer sign up and sign in.
type AccountHandler struct {
	Handler
	accounts *service.AccountService
}

func NewAccountHandler(s *server.Server, accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{
		Handler:  NewHandler(s),
		accounts: accounts,
	}
}

func (h *AccountHandler) signedIn(c echo.Context, resp *model.AuthResponse, err error) (*model.AuthResponse, error) {
	if err == nil && resp.CartToken != "" {
		c.Response().Header().Set(middleware.CartTokenHeader, resp.CartToken)
	}
	return resp, err
}

func (h *AccountHandler) Register(c echo.Context, p *model.RegisterPayload) (*model.AuthResponse, error) {
	resp, err := h.accounts.Register(c.Request().Context(), p, middleware.GetCartToken(c))
	return h.signedIn(c, resp, err)
}

func (h *AccountHandler) Login(c echo.Context, p *model.LoginPayload) (*model.AuthResponse, error) {
	resp, err := h.accounts.Login(c.Request().Context(), p, middleware.GetCartToken(c))
	return h.signedIn(c, resp, err)
}

func (h *AccountHandler) Me(c echo.Context, _ *model.EmptyRequest) (*model.User, error) {
	customerID := middleware.GetCustomerID(c)
	if customerID == nil {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}
	return h.accounts.Me(c.Request().Context(), *customerID)
}

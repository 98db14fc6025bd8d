package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/export"
	"github.com/deppfellow/storefront/internal/lib/livefeed"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

type OrderHandler struct {
	Handler
	orders *service.OrderService
	feed   *livefeed.Hub
}

func NewOrderHandler(s *server.Server, orders *service.OrderService, feed *livefeed.Hub) *OrderHandler {
	return &OrderHandler{
		Handler: NewHandler(s),
		orders:  orders,
		feed:    feed,
	}
}

// TrackOrder is the public lookup by reference and customer email.
func (h *OrderHandler) TrackOrder(c echo.Context, q *model.TrackOrderQuery) (*model.Order, error) {
	return h.orders.GetOrderByReference(c.Request().Context(), q.Reference, q.Email)
}

func (h *OrderHandler) ListMyOrders(c echo.Context, _ *model.EmptyRequest) ([]model.Order, error) {
	customerID := middleware.GetCustomerID(c)
	if customerID == nil {
		return nil, errs.NewUnauthorizedError("Sign in to see your orders", true)
	}
	return h.orders.ListMyOrders(c.Request().Context(), *customerID)
}

func (h *OrderHandler) ListOrders(c echo.Context, q *model.ListOrdersQuery) (*model.PaginatedResponse[model.Order], error) {
	return h.orders.ListOrders(c.Request().Context(), q.Filter())
}

func (h *OrderHandler) GetOrder(c echo.Context, r *model.OrderIDRequest) (*model.Order, error) {
	return h.orders.GetOrder(c.Request().Context(), r.OrderID())
}

func (h *OrderHandler) UpdateStatus(c echo.Context, p *model.UpdateOrderStatusPayload) (*model.Order, error) {
	return h.orders.UpdateStatus(c.Request().Context(), p.OrderID(), p.Status, p.TrackingNumber)
}

func (h *OrderHandler) ExportOrders(c echo.Context, q *model.ExportOrdersQuery) ([]byte, error) {
	from, to := q.Range(time.Now())
	return h.orders.ExportOrders(c.Request().Context(), from, to)
}

// OrdersFilename names the orders workbook download.
func OrdersFilename(echo.Context) string {
	return export.Filename("orders", time.Now())
}

// Live upgrades to the admin websocket that streams order events.
func (h *OrderHandler) Live(c echo.Context) error {
	middleware.GetLogger(c).Info().
		Int("clients", h.feed.ClientCount()).
		Msg("admin joined the live order feed")
	h.feed.ServeHTTP(c.Response(), c.Request())
	return nil
}

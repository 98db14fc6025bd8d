package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/wompi"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
)

// maxWebhookBody bounds the Wompi event body read by the webhook.
const maxWebhookBody = 64 << 10

type CheckoutHandler struct {
	Handler
	checkout *service.CheckoutService
}

func NewCheckoutHandler(s *server.Server, checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		Handler:  NewHandler(s),
		checkout: checkout,
	}
}

func (h *CheckoutHandler) StartCheckout(c echo.Context, p *model.CheckoutPayload) (*service.CheckoutResult, error) {
	return h.checkout.StartCheckout(c.Request().Context(), cartRef(c), p)
}

func (h *CheckoutHandler) GetAcceptanceToken(c echo.Context, _ *model.EmptyRequest) (*wompi.AcceptanceToken, error) {
	return h.checkout.GetAcceptanceToken(c.Request().Context())
}

func (h *CheckoutHandler) ConfirmPayment(c echo.Context, q *model.ConfirmPaymentQuery) (*model.PaymentConfirmation, error) {
	return h.checkout.ConfirmPayment(c.Request().Context(), q.TransactionID)
}

// Webhook receives Wompi events. The checksum covers values inside the body,
// so the raw bytes are handed to the service instead of a bound struct.
func (h *CheckoutHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return fmt.Errorf("read webhook body: %w", err)
	}
	if len(body) > maxWebhookBody {
		return errs.NewBadRequestError("Event too large", false, nil, nil, nil)
	}

	if err := h.checkout.HandleWebhook(c.Request().Context(), body, c.Request().Header.Get(wompi.ChecksumHeader)); err != nil {
		return err
	}

	middleware.GetLogger(c).Debug().Int("bytes", len(body)).Msg("wompi event acknowledged")
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

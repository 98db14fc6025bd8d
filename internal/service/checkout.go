package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/cache"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/lib/wompi"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/repository"
)

// webhookClaimTTL bounds how long a processed webhook event is remembered.
const webhookClaimTTL = 24 * time.Hour

// CheckoutResult is what the storefront needs to open the Wompi widget or
// redirect to the hosted checkout.
type CheckoutResult struct {
	Order   *model.Order         `json:"order"`
	Payment wompi.CheckoutParams `json:"payment"`
}

// CheckoutService turns carts into orders and reconciles them with the
// payment results Wompi reports.
type CheckoutService struct {
	carts     CartStore
	orders    OrderStore
	gateway   PaymentGateway
	cache     *cache.Cache
	notify    *OrderNotifier
	store     config.StoreConfig
	publicURL string
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewCheckoutService(
	carts CartStore,
	orders OrderStore,
	gateway PaymentGateway,
	c *cache.Cache,
	notify *OrderNotifier,
	cfg *config.Config,
	logger *zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		gateway:   gateway,
		cache:     c,
		notify:    notify,
		store:     cfg.Store,
		publicURL: strings.TrimRight(cfg.Server.PublicURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

// ShippingFor returns the shipping cost of a subtotal: free from the
// configured threshold, the flat rate otherwise.
func (s *CheckoutService) ShippingFor(subtotalInCents int64) int64 {
	if s.store.FreeShippingFromCents > 0 && subtotalInCents >= s.store.FreeShippingFromCents {
		return 0
	}
	return s.store.FlatShippingInCents
}

func (s *CheckoutService) newReference() string {
	return s.store.ReferencePrefix + "-" + xid.New().String()
}

func (s *CheckoutService) redirectURL() string {
	return s.publicURL + "/checkout/resultado"
}

// StartCheckout snapshots the cart into a pending order and signs the
// payment parameters for it. The cart is kept until the payment is approved.
func (s *CheckoutService) StartCheckout(ctx context.Context, ref model.CartRef, p *model.CheckoutPayload) (*CheckoutResult, error) {
	cart, err := findCart(ctx, s.carts, ref)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, errs.NewBadRequestError("Your cart is empty", true, &codeCartEmpty, nil, nil)
	}

	var unavailable []errs.FieldError
	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		switch {
		case !item.IsActive:
			unavailable = append(unavailable, errs.FieldError{
				Field: "items." + item.Slug,
				Error: item.Name + " is no longer available",
			})
		case item.Stock < item.Quantity:
			unavailable = append(unavailable, errs.FieldError{
				Field: "items." + item.Slug,
				Error: fmt.Sprintf("%s has only %d units available", item.Name, max(item.Stock, 0)),
			})
		}

		productID := item.ProductID
		items = append(items, model.OrderItem{
			ProductID:        &productID,
			ProductName:      item.Name,
			ProductSlug:      item.Slug,
			UnitPriceInCents: item.PriceInCents,
			Quantity:         item.Quantity,
			LineTotalInCents: item.LineTotalInCents(),
		})
	}
	if len(unavailable) > 0 {
		return nil, errs.NewBadRequestError("Some products are out of stock", true, &codeOutOfStock, unavailable, nil)
	}

	subtotal := cart.SubtotalInCents()
	shipping := s.ShippingFor(subtotal)

	userID := ref.UserID
	if userID == nil {
		userID = cart.UserID
	}

	order, err := s.orders.Create(ctx, &model.Order{
		Reference:       s.newReference(),
		UserID:          userID,
		CartToken:       cart.Token,
		Status:          model.OrderStatusPendingPayment,
		PaymentStatus:   model.PaymentStatusPending,
		Currency:        s.store.Currency,
		SubtotalInCents: subtotal,
		ShippingInCents: shipping,
		TotalInCents:    subtotal + shipping,
		Customer: model.CustomerInfo{
			Name:  strings.TrimSpace(p.Customer.Name),
			Email: utils.NormalizeEmail(p.Customer.Email),
			Phone: strings.TrimSpace(p.Customer.Phone),
		},
		Shipping: model.ShippingInfo{
			Address:    strings.TrimSpace(p.Shipping.Address),
			City:       strings.TrimSpace(p.Shipping.City),
			Department: strings.TrimSpace(p.Shipping.Department),
			Notes:      strings.TrimSpace(p.Shipping.Notes),
		},
		Items: items,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info().
		Str("reference", order.Reference).
		Int64("total_in_cents", order.TotalInCents).
		Int("items", len(order.Items)).
		Msg("checkout started")

	return &CheckoutResult{
		Order:   order,
		Payment: s.gateway.CheckoutParams(order.Reference, order.TotalInCents, order.Currency, s.redirectURL()),
	}, nil
}

// HandleWebhook authenticates a Wompi event and reconciles the transaction
// it carries. Each transaction status is processed once; unknown references
// are acknowledged so Wompi stops retrying. Any other reconcile failure
// releases the claim and is returned, so Wompi delivers the event again.
func (s *CheckoutService) HandleWebhook(ctx context.Context, body []byte, headerChecksum string) error {
	event, err := s.gateway.VerifyEvent(body, headerChecksum)
	if err != nil {
		if errors.Is(err, wompi.ErrMalformedEvent) {
			return errs.NewBadRequestError("Malformed event", false, nil, nil, nil)
		}
		s.logger.Warn().Err(err).Msg("rejected wompi event")
		return errs.NewUnauthorizedError("Invalid event signature", false)
	}

	if event.Event != wompi.EventTransactionUpdated {
		s.logger.Debug().Str("event", event.Event).Msg("ignoring wompi event")
		return nil
	}

	tx, err := event.Transaction()
	if err != nil || tx.ID == "" || tx.Reference == "" {
		return errs.NewBadRequestError("Malformed transaction", false, nil, nil, nil)
	}

	key := fmt.Sprintf("wompi:event:%s:%s", tx.ID, tx.Status)
	claimed, err := s.cache.Claim(ctx, key, webhookClaimTTL)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Info().Str("transaction_id", tx.ID).Str("status", string(tx.Status)).Msg("duplicate wompi event")
		return nil
	}

	if _, err := s.reconcile(ctx, tx); err != nil {
		if isNotFound(err) {
			s.logger.Warn().Str("reference", tx.Reference).Str("transaction_id", tx.ID).Msg("wompi event for unknown order")
			return nil
		}
		if rerr := s.cache.Release(ctx, key); rerr != nil {
			s.logger.Error().Err(rerr).Str("key", key).Msg("failed to release webhook claim")
		}
		return err
	}
	return nil
}

// ConfirmPayment fetches a transaction from Wompi and reconciles it. The
// storefront calls it from the payment redirect page, so only the payment
// outcome is returned.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, transactionID string) (*model.PaymentConfirmation, error) {
	tx, err := s.gateway.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, wompi.ErrNotFound) {
			return nil, errs.NewNotFoundError("Transaction not found", true, &codeTransactionUnknown)
		}
		s.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("wompi transaction lookup failed")
		return nil, errs.NewBadGatewayError("The payment provider is not responding, try again in a moment")
	}

	order, err := s.reconcile(ctx, tx)
	if err != nil {
		if isNotFound(err) {
			return nil, errOrderNotFound()
		}
		return nil, err
	}
	return order.Confirmation(), nil
}

// GetAcceptanceToken returns the terms acceptance the widget must submit.
func (s *CheckoutService) GetAcceptanceToken(ctx context.Context) (*wompi.AcceptanceToken, error) {
	token, err := s.gateway.GetAcceptanceToken(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("wompi acceptance token lookup failed")
		return nil, errs.NewBadGatewayError("The payment provider is not responding, try again in a moment")
	}
	return token, nil
}

// reconcile applies a transaction result to its order. Orders that already
// left the payment stage are returned unchanged.
func (s *CheckoutService) reconcile(ctx context.Context, tx *wompi.Transaction) (*model.Order, error) {
	order, err := s.orders.GetByReference(ctx, tx.Reference)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().
		Str("reference", order.Reference).
		Str("transaction_id", tx.ID).
		Str("transaction_status", string(tx.Status)).
		Logger()

	if !order.Status.AwaitingPayment() {
		logger.Info().Str("order_status", string(order.Status)).Msg("order already settled")
		return order, nil
	}

	update := model.PaymentUpdate{
		OrderID:       order.ID,
		TransactionID: tx.ID,
		PaymentMethod: tx.PaymentMethodType,
	}

	switch tx.Status {
	case wompi.StatusApproved:
		if tx.AmountInCents != order.TotalInCents || !strings.EqualFold(tx.Currency, order.Currency) {
			logger.Error().
				Int64("expected_in_cents", order.TotalInCents).
				Int64("received_in_cents", tx.AmountInCents).
				Str("expected_currency", order.Currency).
				Str("received_currency", tx.Currency).
				Msg("approved payment does not match order total")
			update.Status = model.OrderStatusPendingPayment
			update.PaymentStatus = model.PaymentStatusMismatch
			return s.applyResult(ctx, order, update)
		}
		return s.capture(ctx, order, tx, logger)

	case wompi.StatusDeclined:
		update.Status = model.OrderStatusPaymentFailed
		update.PaymentStatus = model.PaymentStatusDeclined
	case wompi.StatusError:
		update.Status = model.OrderStatusPaymentFailed
		update.PaymentStatus = model.PaymentStatusError
	case wompi.StatusVoided:
		update.Status = model.OrderStatusCancelled
		update.PaymentStatus = model.PaymentStatusVoided
	default:
		logger.Debug().Msg("payment still pending")
		return order, nil
	}

	updated, err := s.applyResult(ctx, order, update)
	if err == nil && updated.Status != order.Status {
		logger.Info().Str("order_status", string(updated.Status)).Msg("payment result applied")
		if updated.Status == model.OrderStatusCancelled {
			s.notify.Cancelled(ctx, updated)
		}
		s.notify.StatusChanged(updated)
	}
	return updated, err
}

func (s *CheckoutService) capture(ctx context.Context, order *model.Order, tx *wompi.Transaction, logger zerolog.Logger) (*model.Order, error) {
	paidAt := s.now().UTC()
	if tx.FinalizedAt != nil {
		paidAt = tx.FinalizedAt.UTC()
	}

	paid, shortfalls, err := s.orders.MarkPaid(ctx, model.MarkPaidParams{
		OrderID:       order.ID,
		TransactionID: tx.ID,
		PaymentMethod: tx.PaymentMethodType,
		PaidAt:        paidAt,
	})
	if errors.Is(err, repository.ErrOrderNotAwaitingPayment) {
		logger.Info().Msg("order settled concurrently")
		if paid != nil {
			return paid, nil
		}
		return order, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	for _, sf := range shortfalls {
		logger.Warn().
			Str("product_id", sf.ProductID.String()).
			Int("requested", sf.Requested).
			Int("available", sf.Available).
			Msg("product oversold, stock clamped at zero")
	}

	invalidateCatalog(ctx, s.cache, &logger)

	logger.Info().Int64("total_in_cents", paid.TotalInCents).Msg("order paid")
	s.notify.Paid(ctx, paid)
	return paid, nil
}

// applyResult records a non-approved outcome. When the order moved on in
// the meantime the current order is returned instead.
func (s *CheckoutService) applyResult(ctx context.Context, order *model.Order, u model.PaymentUpdate) (*model.Order, error) {
	updated, err := s.orders.ApplyPaymentResult(ctx, u)
	if errors.Is(err, repository.ErrOrderNotAwaitingPayment) {
		return s.orders.GetByReference(ctx, order.Reference)
	}
	if err != nil {
		return nil, fmt.Errorf("apply payment result: %w", err)
	}
	return updated, nil
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusPaymentFailed  OrderStatus = "payment_failed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusExpired        OrderStatus = "expired"
)

// AwaitingPayment reports whether a payment result can still change the order.
func (s OrderStatus) AwaitingPayment() bool {
	return s == OrderStatusPendingPayment || s == OrderStatusPaymentFailed
}

// orderTransitions lists the fulfilment moves staff can make by hand.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether staff may move an order from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDeclined PaymentStatus = "declined"
	PaymentStatusVoided   PaymentStatus = "voided"
	PaymentStatusError    PaymentStatus = "error"
	PaymentStatusMismatch PaymentStatus = "mismatch"
)

type Order struct {
	Base
	Reference          string        `json:"reference" db:"reference"`
	UserID             *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	CartToken          string        `json:"-" db:"cart_token"`
	Status             OrderStatus   `json:"status" db:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status" db:"payment_status"`
	Currency           string        `json:"currency" db:"currency"`
	SubtotalInCents    int64         `json:"subtotal_in_cents" db:"subtotal_in_cents"`
	ShippingInCents    int64         `json:"shipping_in_cents" db:"shipping_in_cents"`
	TotalInCents       int64         `json:"total_in_cents" db:"total_in_cents"`
	Customer           CustomerInfo  `json:"customer"`
	Shipping           ShippingInfo  `json:"shipping"`
	WompiTransactionID *string       `json:"wompi_transaction_id,omitempty" db:"wompi_transaction_id"`
	PaymentMethod      *string       `json:"payment_method,omitempty" db:"payment_method"`
	TrackingNumber     *string       `json:"tracking_number,omitempty" db:"tracking_number"`
	PaidAt             *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	Items              []OrderItem   `json:"items"`
}

// EmailMatches compares the customer email case-insensitively.
func (o *Order) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(o.Customer.Email), strings.TrimSpace(email))
}

// PaymentConfirmation is the order view shown on the payment result page.
// It leaves out customer and shipping details since the caller is only
// identified by a transaction id.
type PaymentConfirmation struct {
	Reference     string        `json:"reference"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Currency      string        `json:"currency"`
	TotalInCents  int64         `json:"total_in_cents"`
	PaymentMethod *string       `json:"payment_method,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	Items         []OrderItem   `json:"items"`
}

func (o *Order) Confirmation() *PaymentConfirmation {
	return &PaymentConfirmation{
		Reference:     o.Reference,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Currency:      o.Currency,
		TotalInCents:  o.TotalInCents,
		PaymentMethod: o.PaymentMethod,
		PaidAt:        o.PaidAt,
		Items:         o.Items,
	}
}

type CustomerInfo struct {
	Name  string `json:"name" db:"customer_name"`
	Email string `json:"email" db:"customer_email"`
	Phone string `json:"phone" db:"customer_phone"`
}

type ShippingInfo struct {
	Address    string `json:"address" db:"shipping_address"`
	City       string `json:"city" db:"shipping_city"`
	Department string `json:"department" db:"shipping_department"`
	Notes      string `json:"notes" db:"shipping_notes"`
}

// OrderItem is a snapshot of a product at checkout time.
type OrderItem struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	ProductID        *uuid.UUID `json:"product_id,omitempty" db:"product_id"`
	ProductName      string     `json:"product_name" db:"product_name"`
	ProductSlug      string     `json:"product_slug" db:"product_slug"`
	UnitPriceInCents int64      `json:"unit_price_in_cents" db:"unit_price_in_cents"`
	Quantity         int        `json:"quantity" db:"quantity"`
	LineTotalInCents int64      `json:"line_total_in_cents" db:"line_total_in_cents"`
}

// OrderFilter drives the admin order listing.
type OrderFilter struct {
	Status OrderStatus
	Page   int
	Limit  int
}

// MarkPaidParams carries the gateway data stored when an order is paid.
type MarkPaidParams struct {
	OrderID       uuid.UUID
	TransactionID string
	PaymentMethod string
	PaidAt        time.Time
}

// StockShortfall records a product sold beyond its remaining stock.
type StockShortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// PaymentUpdate is a non-approved payment result applied to an order.
type PaymentUpdate struct {
	OrderID       uuid.UUID
	Status        OrderStatus
	PaymentStatus PaymentStatus
	TransactionID string
	PaymentMethod string
}

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/storefront/internal/validation"
)

type CustomerPayload struct {
	Name  string `json:"name" validate:"required,min=2,max=120"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"required,min=7,max=20"`
}

type ShippingPayload struct {
	Address    string `json:"address" validate:"required,min=5,max=200"`
	City       string `json:"city" validate:"required,max=80"`
	Department string `json:"department" validate:"required,max=80"`
	Notes      string `json:"notes" validate:"max=500"`
}

type CheckoutPayload struct {
	Customer CustomerPayload `json:"customer" validate:"required"`
	Shipping ShippingPayload `json:"shipping" validate:"required"`
}

func (p *CheckoutPayload) Validate() error {
	return validation.Struct(p)
}

type ConfirmPaymentQuery struct {
	TransactionID string `query:"id" validate:"required,max=64"`
}

func (q *ConfirmPaymentQuery) Validate() error {
	return validation.Struct(q)
}

type TrackOrderQuery struct {
	Reference string `query:"reference" validate:"required,max=40"`
	Email     string `query:"email" validate:"required,email"`
}

func (q *TrackOrderQuery) Validate() error {
	return validation.Struct(q)
}

type ListOrdersQuery struct {
	Status OrderStatus `query:"status" validate:"omitempty,oneof=pending_payment paid payment_failed processing shipped delivered cancelled expired"`
	Page   int         `query:"page" validate:"gte=0"`
	Limit  int         `query:"limit" validate:"gte=0,lte=100"`
}

func (q *ListOrdersQuery) Validate() error {
	return validation.Struct(q)
}

// Filter applies default paging.
func (q *ListOrdersQuery) Filter() OrderFilter {
	f := OrderFilter{Status: q.Status, Page: q.Page, Limit: q.Limit}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	return f
}

type OrderIDRequest struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

func (r *OrderIDRequest) Validate() error {
	return validation.Struct(r)
}

// OrderID is only safe to call after Validate.
func (r *OrderIDRequest) OrderID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type UpdateOrderStatusPayload struct {
	OrderIDRequest
	Status         OrderStatus `json:"status" validate:"required,oneof=processing shipped delivered cancelled"`
	TrackingNumber *string     `json:"tracking_number" validate:"omitempty,min=3,max=80"`
}

func (p *UpdateOrderStatusPayload) Validate() error {
	return validation.Struct(p)
}

// ExportOrdersQuery selects orders created in [from, to]; dates are YYYY-MM-DD.
type ExportOrdersQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (q *ExportOrdersQuery) Validate() error {
	if err := validation.Struct(q); err != nil {
		return err
	}
	from, to := q.Range(time.Now())
	if !from.Before(to) {
		return validation.CustomValidationErrors{{Field: "to", Message: "must not be before from"}}
	}
	return nil
}

// Range resolves the export window. The default is the 30 days before now,
// and to is inclusive of the whole day.
func (q *ExportOrdersQuery) Range(now time.Time) (time.Time, time.Time) {
	to := now.UTC()
	if q.To != "" {
		if t, err := time.Parse(time.DateOnly, q.To); err == nil {
			to = t.AddDate(0, 0, 1)
		}
	}
	from := to.AddDate(0, 0, -30)
	if q.From != "" {
		if t, err := time.Parse(time.DateOnly, q.From); err == nil {
			from = t
		}
	}
	return from, to
}

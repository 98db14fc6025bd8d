package model

import "github.com/google/uuid"

type Cart struct {
	Base
	Token  string     `json:"token" db:"token"`
	UserID *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Items  []CartItem `json:"items"`
}

// CartItem is a cart row joined with live product data.
type CartItem struct {
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Slug         string    `json:"slug" db:"slug"`
	Name         string    `json:"name" db:"name"`
	PriceInCents int64     `json:"price_in_cents" db:"price_in_cents"`
	Currency     string    `json:"currency" db:"currency"`
	Image        string    `json:"image" db:"image"`
	Stock        int       `json:"stock" db:"stock"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// LineTotalInCents is price times quantity.
func (i CartItem) LineTotalInCents() int64 {
	return i.PriceInCents * int64(i.Quantity)
}

// Quantity returns the quantity of productID in the cart, 0 when absent.
func (c *Cart) Quantity(productID uuid.UUID) int {
	if c == nil {
		return 0
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// SubtotalInCents sums the line totals.
func (c *Cart) SubtotalInCents() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, item := range c.Items {
		total += item.LineTotalInCents()
	}
	return total
}

// ItemCount sums quantities.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// CartLine is the response shape of one cart item.
type CartLine struct {
	CartItem
	LineTotalInCents int64 `json:"line_total_in_cents"`
}

// CartView is the response shape of GET /api/cart.
type CartView struct {
	Token           string     `json:"token"`
	Items           []CartLine `json:"items"`
	ItemCount       int        `json:"item_count"`
	SubtotalInCents int64      `json:"subtotal_in_cents"`
	Currency        string     `json:"currency"`
}

// NewCartView builds the response for c. A nil cart gives an empty view.
func NewCartView(c *Cart, token, currency string) CartView {
	view := CartView{
		Token:    token,
		Items:    []CartLine{},
		Currency: currency,
	}
	if c == nil {
		return view
	}
	if c.Token != "" {
		view.Token = c.Token
	}
	for _, item := range c.Items {
		view.Items = append(view.Items, CartLine{
			CartItem:         item,
			LineTotalInCents: item.LineTotalInCents(),
		})
	}
	view.ItemCount = c.ItemCount()
	view.SubtotalInCents = c.SubtotalInCents()
	return view
}

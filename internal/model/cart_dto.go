package model

import (
	"github.com/google/uuid"

	"github.com/deppfellow/storefront/internal/validation"
)

// CartRef identifies the cart of a request: the X-Cart-Token header and,
// for signed-in customers, their user id.
type CartRef struct {
	Token  string
	UserID *uuid.UUID
}

type AddCartItemPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

func (p *AddCartItemPayload) Validate() error {
	return validation.Struct(p)
}

type CartItemRequest struct {
	ProductID string `param:"product_id" json:"-" validate:"required,uuid"`
}

func (r *CartItemRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateCartItemPayload struct {
	CartItemRequest
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

func (p *UpdateCartItemPayload) Validate() error {
	return validation.Struct(p)
}

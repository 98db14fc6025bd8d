package model

import "github.com/deppfellow/storefront/internal/validation"

type RegisterPayload struct {
	Email          string  `json:"email" validate:"required,email,max=254"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	Name           string  `json:"name" validate:"required,min=2,max=120"`
	Phone          *string `json:"phone" validate:"omitempty,min=7,max=20"`
	MarketingOptIn bool    `json:"marketing_opt_in"`
}

func (p *RegisterPayload) Validate() error {
	return validation.Struct(p)
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

func (p *LoginPayload) Validate() error {
	return validation.Struct(p)
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
	CartToken string `json:"cart_token,omitempty"`
}

package model

import "github.com/deppfellow/storefront/internal/validation"

type ChatPayload struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
	Message   string `json:"message" validate:"required,max=1000"`
}

func (p *ChatPayload) Validate() error {
	return validation.Struct(p)
}

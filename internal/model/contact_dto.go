package model

import "github.com/deppfellow/storefront/internal/validation"

type ContactPayload struct {
	Name    string  `json:"name" validate:"required,min=2,max=120"`
	Email   string  `json:"email" validate:"required,email,max=254"`
	Phone   *string `json:"phone" validate:"omitempty,min=7,max=20"`
	Subject string  `json:"subject" validate:"required,max=150"`
	Message string  `json:"message" validate:"required,min=10,max=5000"`
}

func (p *ContactPayload) Validate() error {
	return validation.Struct(p)
}

// PageQuery is the paging query string shared by admin listings.
type PageQuery struct {
	Page  int `query:"page" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

func (q *PageQuery) Validate() error {
	return validation.Struct(q)
}

// Values applies default paging.
func (q *PageQuery) Values() (page, limit int) {
	page, limit = q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return page, limit
}

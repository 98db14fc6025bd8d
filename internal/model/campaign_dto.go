package model

import (
	"github.com/google/uuid"

	"github.com/deppfellow/storefront/internal/validation"
)

type CreateCampaignPayload struct {
	Subject  string `json:"subject" validate:"required,max=150"`
	Heading  string `json:"heading" validate:"required,max=150"`
	Body     string `json:"body" validate:"required,max=10000"`
	CTALabel string `json:"cta_label" validate:"required_with=CTAURL,max=60"`
	CTAURL   string `json:"cta_url" validate:"omitempty,url"`
}

func (p *CreateCampaignPayload) Validate() error {
	return validation.Struct(p)
}

type CampaignIDRequest struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

func (r *CampaignIDRequest) Validate() error {
	return validation.Struct(r)
}

// CampaignID is only safe to call after Validate.
func (r *CampaignIDRequest) CampaignID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type SubscribePayload struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (p *SubscribePayload) Validate() error {
	return validation.Struct(p)
}

type UnsubscribePayload struct {
	Token string `json:"token" validate:"required,max=64"`
}

func (p *UnsubscribePayload) Validate() error {
	return validation.Struct(p)
}

// SendCampaignResult reports how many emails were queued.
type SendCampaignResult struct {
	Campaign   *Campaign `json:"campaign"`
	Recipients int       `json:"recipients"`
}

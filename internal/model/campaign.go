package model

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft   CampaignStatus = "draft"
	CampaignStatusSending CampaignStatus = "sending"
	CampaignStatusSent    CampaignStatus = "sent"
)

type Campaign struct {
	Base
	Subject        string         `json:"subject" db:"subject"`
	Heading        string         `json:"heading" db:"heading"`
	Body           string         `json:"body" db:"body"`
	CTALabel       string         `json:"cta_label" db:"cta_label"`
	CTAURL         string         `json:"cta_url" db:"cta_url"`
	Status         CampaignStatus `json:"status" db:"status"`
	RecipientCount int            `json:"recipient_count" db:"recipient_count"`
	SentAt         *time.Time     `json:"sent_at,omitempty" db:"sent_at"`
}

type Subscriber struct {
	Base
	Email            string `json:"email" db:"email"`
	UnsubscribeToken string `json:"-" db:"unsubscribe_token"`
	IsActive         bool   `json:"is_active" db:"is_active"`
}

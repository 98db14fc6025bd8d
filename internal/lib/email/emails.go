package email

import (
	"context"
	"time"
)

type WelcomeData struct {
	Name           string `json:"name"`
	MarketingOptIn bool   `json:"marketing_opt_in"`
}

type OrderItemData struct {
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	LineTotalInCents int64  `json:"line_total_in_cents"`
}

type OrderData struct {
	Reference       string          `json:"reference"`
	CustomerName    string          `json:"customer_name"`
	Items           []OrderItemData `json:"items"`
	Currency        string          `json:"currency"`
	SubtotalInCents int64           `json:"subtotal_in_cents"`
	ShippingInCents int64           `json:"shipping_in_cents"`
	TotalInCents    int64           `json:"total_in_cents"`
	ShippingAddress string          `json:"shipping_address"`
	City            string          `json:"city"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	TrackURL        string          `json:"track_url"`
}

type ContactData struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

type CampaignData struct {
	Subject        string `json:"subject"`
	Heading        string `json:"heading"`
	Body           string `json:"body"`
	CTALabel       string `json:"cta_label"`
	CTAURL         string `json:"cta_url"`
	UnsubscribeURL string `json:"unsubscribe_url"`
}

func (c *Client) SendWelcomeEmail(ctx context.Context, to string, d WelcomeData) error {
	return c.SendEmail(ctx, to, "Bienvenida a "+c.store.Name, TemplateWelcome, d, "")
}

func (c *Client) SendOrderConfirmationEmail(ctx context.Context, to string, d OrderData) error {
	return c.SendEmail(ctx, to, "Confirmamos tu pedido "+d.Reference, TemplateOrderConfirmation, d, "")
}

func (c *Client) SendOrderShippedEmail(ctx context.Context, to string, d OrderData) error {
	return c.SendEmail(ctx, to, "Tu pedido "+d.Reference+" va en camino", TemplateOrderShipped, d, "")
}

func (c *Client) SendContactNotificationEmail(ctx context.Context, to string, d ContactData) error {
	return c.SendEmail(ctx, to, "Contacto: "+d.Subject, TemplateContactNotification, d, "")
}

func (c *Client) SendContactAutoReplyEmail(ctx context.Context, to string, d ContactData) error {
	return c.SendEmail(ctx, to, "Recibimos tu mensaje", TemplateContactAutoReply, d, "")
}

func (c *Client) SendCampaignEmail(ctx context.Context, to string, d CampaignData) error {
	return c.SendEmail(ctx, to, d.Subject, TemplateCampaign, d, d.UnsubscribeURL)
}

// Package email sends transactional and campaign emails through Resend.
//
// Bodies are html/template pages embedded in the binary, rendered inside a
// shared layout with the sprig function set.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
)

// Store is the branding every template can read as .Store.
type Store struct {
	Name           string
	URL            string
	UnsubscribeURL string
}

type view struct {
	Store Store
	Data  any
}

type Client struct {
	client    *resend.Client
	from      string
	store     Store
	templates map[Template]*template.Template
	logger    *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) (*Client, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse email templates")
	}

	return &Client{
		client:    resend.NewClient(cfg.Integration.ResendAPIKey),
		from:      cfg.Integration.EmailFrom,
		store:     Store{Name: cfg.Store.Name, URL: strings.TrimRight(cfg.Server.PublicURL, "/")},
		templates: templates,
		logger:    logger,
	}, nil
}

// Render executes a template with data. unsubscribeURL adds the footer link.
func (c *Client) Render(name Template, data any, unsubscribeURL string) (string, error) {
	tmpl, ok := c.templates[name]
	if !ok {
		return "", errors.Errorf("unknown email template %q", name)
	}

	store := c.store
	store.UnsubscribeURL = unsubscribeURL

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", view{Store: store, Data: data}); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}

// SendEmail renders name and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, name Template, data any, unsubscribeURL string) error {
	html, err := c.Render(name, data, unsubscribeURL)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if unsubscribeURL != "" {
		params.Headers = map[string]string{
			"List-Unsubscribe": "<" + unsubscribeURL + ">",
		}
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("template", string(name)).
		Str("email_id", sent.Id).
		Msg("email sent")
	return nil
}

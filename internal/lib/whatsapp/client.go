// Package whatsapp sends text messages through the WhatsApp Cloud API and
// builds click-to-chat links for customer handoff.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
)

type Client struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(cfg config.WhatsAppConfig, logger *zerolog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Enabled reports whether messages are actually sent.
func (c *Client) Enabled() bool {
	return c.cfg.Enabled()
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NotifyOwner sends body to the configured store owner number.
func (c *Client) NotifyOwner(ctx context.Context, body string) error {
	return c.SendText(ctx, c.cfg.NotifyTo, body)
}

// SendText sends a plain text message. It is a no-op when the client is disabled.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if !c.Enabled() {
		c.logger.Debug().Str("to", to).Msg("whatsapp disabled, message skipped")
		return nil
	}

	msg := textMessage{MessagingProduct: "whatsapp", To: digits(to), Type: "text"}
	msg.Text.Body = body

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("whatsapp: failed to marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("whatsapp: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("whatsapp: status %d: %s (code %d)", resp.StatusCode, apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("whatsapp: status %d", resp.StatusCode)
	}
	return nil
}

// ClickToChatURL builds https://wa.me/<phone>?text=<text>.
func ClickToChatURL(phone, text string) string {
	u := "https://wa.me/" + digits(phone)
	if text == "" {
		return u
	}
	return u + "?text=" + url.QueryEscape(text)
}

func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

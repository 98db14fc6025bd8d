// Package wompi is a small client for the Wompi payment gateway: transaction
// lookups, merchant acceptance tokens, checkout signatures and webhook
// verification.
package wompi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deppfellow/storefront/internal/config"
)

const (
	transactionPath = "/transactions/%s"
	merchantPath    = "/merchants/%s"
)

var ErrNotFound = errors.New("wompi: resource not found")

type Client struct {
	cfg        config.WompiConfig
	httpClient *http.Client
}

func NewClient(cfg config.WompiConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PublicKey returns the merchant public key used by the widget.
func (c *Client) PublicKey() string {
	return c.cfg.PublicKey
}

// CheckoutParams signs reference and amount for the widget and hosted checkout.
func (c *Client) CheckoutParams(reference string, amountInCents int64, currency, redirectURL string) CheckoutParams {
	p := CheckoutParams{
		PublicKey:     c.cfg.PublicKey,
		Currency:      currency,
		AmountInCents: amountInCents,
		Reference:     reference,
		RedirectURL:   redirectURL,
	}
	p.IntegritySignature = IntegritySignature(reference, amountInCents, currency, c.cfg.IntegritySecret)
	p.CheckoutURL = CheckoutURL(c.cfg.CheckoutURL, p)
	return p
}

// VerifyEvent parses and authenticates a webhook body.
func (c *Client) VerifyEvent(body []byte, headerChecksum string) (*Event, error) {
	return ParseEvent(body, headerChecksum, c.cfg.EventsSecret)
}

// GetTransaction fetches a transaction by its Wompi id.
func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var resp transactionResponse
	if err := c.get(ctx, fmt.Sprintf(transactionPath, id), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetAcceptanceToken fetches the merchant's presigned acceptance.
func (c *Client) GetAcceptanceToken(ctx context.Context) (*AcceptanceToken, error) {
	var resp merchantResponse
	if err := c.get(ctx, fmt.Sprintf(merchantPath, c.cfg.PublicKey), &resp); err != nil {
		return nil, err
	}
	return &resp.Data.PresignedAcceptance, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("wompi: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.PublicKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wompi: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("wompi: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("wompi: unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("wompi: failed to parse response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

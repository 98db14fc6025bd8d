// Package service contains the business logic.
//
// It sits between the handler and repository layers. Services receive
// validated payloads from handlers, apply the store rules (stock, shipping,
// payment reconciliation) and call repositories through the small store
// interfaces in ports.go. Business failures are returned as *errs.HTTPError.
package service

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/storefront/internal/errs"
)

// Machine codes returned to clients.
var (
	codeCartEmpty           = "CART_EMPTY"
	codeOutOfStock          = "OUT_OF_STOCK"
	codeNegativeStock       = "NEGATIVE_STOCK"
	codeProductNotFound     = "PRODUCT_NOT_FOUND"
	codeCartItemNotFound    = "CART_ITEM_NOT_FOUND"
	codeOrderNotFound       = "ORDER_NOT_FOUND"
	codeTransactionUnknown  = "TRANSACTION_NOT_FOUND"
	codeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	codeStatusChanged       = "ORDER_STATUS_CHANGED"
	codeInvalidPrice        = "INVALID_PRICE"
	codeStorageDisabled     = "IMAGE_UPLOADS_DISABLED"
	codeUserNotFound        = "USER_NOT_FOUND"
	codeCampaignSent        = "CAMPAIGN_ALREADY_SENT"
	codeCampaignNotFound    = "CAMPAIGN_NOT_FOUND"
	codeSubscriptionMissing = "SUBSCRIPTION_NOT_FOUND"
)

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func errProductNotFound() *errs.HTTPError {
	return errs.NewNotFoundError("Product not found", true, &codeProductNotFound)
}

func errOrderNotFound() *errs.HTTPError {
	return errs.NewNotFoundError("Order not found", true, &codeOrderNotFound)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/errs"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleError_KnownConstraint(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "users",
		ConstraintName: "users_email_key",
	})

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "EMAIL_ALREADY_REGISTERED", httpErr.Code)
	assert.Equal(t, "An account with this email already exists", httpErr.Message)
	assert.True(t, httpErr.Override)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "email", httpErr.Errors[0].Field)
	assert.Equal(t, "is already registered", httpErr.Errors[0].Error)
}

func TestHandleError_UnknownUniqueConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", TableName: "carts", ConstraintName: "carts_token_key"}

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, "CART_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "Cart already exists", httpErr.Message)
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", TableName: "cart_items", ColumnName: "product_id"}

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "PRODUCT_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced product does not exist", httpErr.Message)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23502", TableName: "orders", ColumnName: "customer_email"}

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, "ORDER_REQUIRED", httpErr.Code)
	assert.Equal(t, "Order is missing customer email", httpErr.Message)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "customer_email", httpErr.Errors[0].Field)
}

func TestHandleError_NoRows(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(NotFound("products")))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "PRODUCT_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "Product not found", httpErr.Message)

	httpErr = asHTTPError(t, HandleError(NotFound("whatsapp_sessions")))
	assert.Equal(t, "CHAT_SESSION_NOT_FOUND", httpErr.Code)

	httpErr = asHTTPError(t, HandleError(NotFound("coupons")))
	assert.Equal(t, "COUPON_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "Coupon not found", httpErr.Message)

	httpErr = asHTTPError(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", httpErr.Code)
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	orig := errs.NewForbiddenError("nope", true)
	assert.Same(t, orig, HandleError(orig))
}

func TestHandleError_UnknownIsInternal(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(errors.New("connection reset")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestErrCode(t *testing.T) {
	converted := ConvertPgError(&pgconn.PgError{Code: "40P01", Severity: "ERROR"})
	assert.Equal(t, DeadlockDetected, ErrCode(fmt.Errorf("tx: %w", converted)))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(converted, &pgErr))
}

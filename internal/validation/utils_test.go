package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/errs"
)

type address struct {
	City string `json:"city" validate:"required"`
}

type samplePayload struct {
	Email    string  `json:"email" validate:"required,email"`
	Quantity int     `json:"quantity" validate:"min=1,max=99"`
	Slug     string  `json:"slug" validate:"omitempty,slug"`
	Address  address `json:"address"`
}

func (p *samplePayload) Validate() error {
	return Struct(p)
}

type customPayload struct{}

func (p *customPayload) Validate() error {
	return CustomValidationErrors{{Field: "items", Message: "cart is empty"}}
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	c := newContext(`{"email":"not-an-email","quantity":120,"slug":"Bad Slug","address":{}}`)

	err := BindAndValidate(c, &samplePayload{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)

	got := map[string]string{}
	for _, fe := range httpErr.Errors {
		got[fe.Field] = fe.Error
	}
	assert.Equal(t, "must be a valid email address", got["email"])
	assert.Equal(t, "must not exceed 99", got["quantity"])
	assert.Equal(t, "must contain only lowercase letters, numbers and dashes", got["slug"])
	assert.Equal(t, "is required", got["address.city"])
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	c := newContext(`{"email":`)

	err := BindAndValidate(c, &samplePayload{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidate_Valid(t *testing.T) {
	c := newContext(`{"email":"ana@example.com","quantity":2,"slug":"bolso-tote","address":{"city":"Bogota"}}`)

	payload := &samplePayload{}
	require.NoError(t, BindAndValidate(c, payload))
	assert.Equal(t, 2, payload.Quantity)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{}`), &customPayload{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "items", httpErr.Errors[0].Field)
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("6f1c1a53-44c9-4f8b-9d6a-0f7a4c1e2b3d"))
	assert.False(t, IsValidUUID("not-a-uuid"))
}

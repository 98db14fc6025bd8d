package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{}
	cfg.Integration.ResendAPIKey = "re_test"
	cfg.Integration.EmailFrom = "Tienda <hola@example.com>"
	cfg.Store.Name = "Tienda Arce"
	cfg.Server.PublicURL = "https://shop.example.com/"

	logger := zerolog.Nop()
	c, err := NewClient(cfg, &logger)
	require.NoError(t, err)
	return c
}

func TestRender_AllTemplatesWithPreviewData(t *testing.T) {
	c := newTestClient(t)

	for _, name := range Templates {
		t.Run(string(name), func(t *testing.T) {
			data, ok := PreviewData[name]
			require.True(t, ok, "missing preview data")

			html, err := c.Render(name, data, "")
			require.NoError(t, err)
			assert.Contains(t, html, "Tienda Arce")
			assert.Contains(t, html, `href="https://shop.example.com"`)
			assert.NotContains(t, html, "Cancelar suscripción")
		})
	}
}

func TestRender_OrderConfirmation(t *testing.T) {
	c := newTestClient(t)

	html, err := c.Render(TemplateOrderConfirmation, PreviewData[TemplateOrderConfirmation], "")
	require.NoError(t, err)
	assert.Contains(t, html, "ORD-d3kq8p2v9h1c5n0tg6s0")
	assert.Contains(t, html, "$ 450.000 COP")
	assert.Contains(t, html, "$ 810.000 COP")
	assert.Contains(t, html, "Gratis")
}

func TestRender_CampaignEscapesBodyAndAddsUnsubscribe(t *testing.T) {
	c := newTestClient(t)

	html, err := c.Render(TemplateCampaign, CampaignData{
		Heading: "Hola",
		Body:    "línea 1\n<script>alert(1)</script>",
	}, "https://shop.example.com/newsletter/unsubscribe?token=abc")
	require.NoError(t, err)
	assert.Contains(t, html, "línea 1<br>&lt;script&gt;")
	assert.Contains(t, html, "Cancelar suscripción")
	assert.Contains(t, html, "token=abc")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := newTestClient(t).Render("missing", nil, "")
	assert.Error(t, err)
}

func TestSendEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	c := newTestClient(t)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	c.client.BaseURL = base

	err = c.SendWelcomeEmail(context.Background(), "ana@example.com", WelcomeData{Name: "Ana"})
	require.NoError(t, err)

	assert.Equal(t, "Tienda <hola@example.com>", got["from"])
	assert.Equal(t, []any{"ana@example.com"}, got["to"])
	assert.Equal(t, "Bienvenida a Tienda Arce", got["subject"])
	assert.Contains(t, got["html"], "Bienvenida, Ana")
}

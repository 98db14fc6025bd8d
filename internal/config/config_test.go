package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	vars := map[string]string{
		"STOREFRONT_PRIMARY__ENV":                         "development",
		"STOREFRONT_SERVER__PORT":                         "8080",
		"STOREFRONT_SERVER__READ_TIMEOUT":                 "30",
		"STOREFRONT_SERVER__WRITE_TIMEOUT":                "30",
		"STOREFRONT_SERVER__IDLE_TIMEOUT":                 "60",
		"STOREFRONT_SERVER__CORS_ALLOWED_ORIGINS":         "http://localhost:3000",
		"STOREFRONT_SERVER__PUBLIC_URL":                   "http://localhost:3000",
		"STOREFRONT_DATABASE__HOST":                       "localhost",
		"STOREFRONT_DATABASE__PORT":                       "5432",
		"STOREFRONT_DATABASE__USER":                       "postgres",
		"STOREFRONT_DATABASE__PASSWORD":                   "p@ss:word",
		"STOREFRONT_DATABASE__NAME":                       "storefront",
		"STOREFRONT_DATABASE__SSL_MODE":                   "disable",
		"STOREFRONT_DATABASE__MAX_OPEN_CONNS":             "10",
		"STOREFRONT_DATABASE__MAX_IDLE_CONNS":             "5",
		"STOREFRONT_DATABASE__CONN_MAX_LIFETIME":          "300",
		"STOREFRONT_DATABASE__CONN_MAX_IDLE_TIME":         "60",
		"STOREFRONT_REDIS__ADDRESS":                       "localhost:6379",
		"STOREFRONT_AUTH__SECRET_KEY":                     "sk_test_clerk",
		"STOREFRONT_AUTH__JWT_SECRET":                     "0123456789abcdef0123456789abcdef",
		"STOREFRONT_INTEGRATION__RESEND_API_KEY":          "re_test",
		"STOREFRONT_INTEGRATION__EMAIL_FROM":              "Tienda <hola@example.com>",
		"STOREFRONT_INTEGRATION__STORE_INBOX":             "owner@example.com",
		"STOREFRONT_INTEGRATION__WOMPI__BASE_URL":         "https://sandbox.wompi.co/v1",
		"STOREFRONT_INTEGRATION__WOMPI__PUBLIC_KEY":       "pub_test_x",
		"STOREFRONT_INTEGRATION__WOMPI__PRIVATE_KEY":      "prv_test_x",
		"STOREFRONT_INTEGRATION__WOMPI__INTEGRITY_SECRET": "test_integrity_x",
		"STOREFRONT_INTEGRATION__WOMPI__EVENTS_SECRET":    "test_events_x",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.host", envKey("STOREFRONT_DATABASE__HOST"))
	assert.Equal(t, "integration.wompi.public_key", envKey("STOREFRONT_INTEGRATION__WOMPI__PUBLIC_KEY"))
	assert.Equal(t, "server.cors_allowed_origins", envKey("STOREFRONT_SERVER__CORS_ALLOWED_ORIGINS"))
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "COP", cfg.Store.Currency)
	assert.Equal(t, "ORD", cfg.Store.ReferencePrefix)
	assert.Equal(t, 24*time.Hour, cfg.Store.PendingOrderTTL)
	assert.Equal(t, 72*time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, "org:admin", cfg.Auth.AdminRole)
	assert.Equal(t, "*/15 * * * *", cfg.Jobs.ExpirePendingCron)
	assert.Equal(t, "https://checkout.wompi.co/p/", cfg.Integration.Wompi.CheckoutURL)
	assert.False(t, cfg.Integration.WhatsApp.Enabled())

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "storefront", cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOREFRONT_INTEGRATION__WOMPI__EVENTS_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EventsSecret")
}

func TestLoadConfig_InvalidCron(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOREFRONT_JOBS__EXPIRE_PENDING_CRON", "every now and then")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expire_pending_cron")
}

func TestDatabaseConfig_DSNEscapesPassword(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", Name: "shop", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/shop?sslmode=disable", d.DSN())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ObservabilityConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *ObservabilityConfig) {}},
		{name: "bad level", mutate: func(c *ObservabilityConfig) { c.Logging.Level = "verbose" }, wantErr: "invalid logging level"},
		{name: "bad format", mutate: func(c *ObservabilityConfig) { c.Logging.Format = "xml" }, wantErr: "invalid logging format"},
		{name: "negative threshold", mutate: func(c *ObservabilityConfig) { c.Logging.SlowQueryThreshold = -time.Second }, wantErr: "non-negative"},
		{name: "unknown check", mutate: func(c *ObservabilityConfig) { c.HealthChecks.Checks = []string{"kafka"} }, wantErr: "unknown health check"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultObservabilityConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHealthChecksConfig_Runs(t *testing.T) {
	h := DefaultObservabilityConfig().HealthChecks
	assert.True(t, h.Runs("database"))
	assert.False(t, h.Runs("kafka"))

	h.Enabled = false
	assert.False(t, h.Runs("redis"))
}

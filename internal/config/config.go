// Package config manages environment variables.
//
// It reads variables from the process environment (and an optional `.env`
// file), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability, store rules).
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// EnvPrefix is the prefix every storefront variable carries.
//
// Nesting uses a double underscore, e.g.
//
//	STOREFRONT_DATABASE__HOST        -> database.host
//	STOREFRONT_INTEGRATION__WOMPI__PUBLIC_KEY -> integration.wompi.public_key
const EnvPrefix = "STOREFRONT_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration" validate:"required"`
	Store         StoreConfig          `koanf:"store"`
	Jobs          JobsConfig           `koanf:"jobs"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	// PublicURL is the storefront frontend base URL, used in emails and payment redirects.
	PublicURL string `koanf:"public_url" validate:"required,url"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// DSN builds the postgres URL for pgx. The password is URL-escaped.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User,
		url.QueryEscape(d.Password),
		net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		d.Name,
		d.SSLMode,
	)
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// AuthConfig stores authentication-related secrets.
//
// SecretKey is the Clerk secret used for staff (admin) sessions.
// Customer accounts are signed locally with JWTSecret.
type AuthConfig struct {
	SecretKey  string        `koanf:"secret_key" validate:"required"`
	JWTSecret  string        `koanf:"jwt_secret" validate:"required,min=32"`
	JWTTTL     time.Duration `koanf:"jwt_ttl"`
	JWTIssuer  string        `koanf:"jwt_issuer"`
	AdminRole  string        `koanf:"admin_role"`
	BcryptCost int           `koanf:"bcrypt_cost" validate:"omitempty,min=4,max=31"`
}

// IntegrationConfig groups third-party SaaS credentials.
type IntegrationConfig struct {
	ResendAPIKey string         `koanf:"resend_api_key" validate:"required"`
	EmailFrom    string         `koanf:"email_from" validate:"required"`
	StoreInbox   string         `koanf:"store_inbox" validate:"required,email"`
	Wompi        WompiConfig    `koanf:"wompi" validate:"required"`
	WhatsApp     WhatsAppConfig `koanf:"whatsapp"`
	Kafka        KafkaConfig    `koanf:"kafka"`
	Storage      StorageConfig  `koanf:"storage"`
}

// WompiConfig holds the payment gateway keys.
//
// The integrity secret signs widget/checkout parameters, the events secret
// verifies webhook checksums.
type WompiConfig struct {
	BaseURL         string `koanf:"base_url" validate:"required,url"`
	PublicKey       string `koanf:"public_key" validate:"required"`
	PrivateKey      string `koanf:"private_key" validate:"required"`
	IntegritySecret string `koanf:"integrity_secret" validate:"required"`
	EventsSecret    string `koanf:"events_secret" validate:"required"`
	CheckoutURL     string `koanf:"checkout_url"`
}

// WhatsAppConfig configures the Cloud API client used for owner notifications.
// Empty AccessToken disables outbound WhatsApp messages.
type WhatsAppConfig struct {
	BaseURL       string `koanf:"base_url"`
	AccessToken   string `koanf:"access_token"`
	PhoneNumberID string `koanf:"phone_number_id"`
	NotifyTo      string `koanf:"notify_to"`
}

// Enabled reports whether outbound WhatsApp messages can be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.NotifyTo != ""
}

// KafkaConfig configures the order events publisher. No brokers, no publishing.
type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// StorageConfig points at an S3-compatible bucket for product images.
type StorageConfig struct {
	Bucket            string        `koanf:"bucket"`
	Region            string        `koanf:"region"`
	Endpoint          string        `koanf:"endpoint"`
	AccessKey         string        `koanf:"access_key"`
	SecretKey         string        `koanf:"secret_key"`
	UsePathStyle      bool          `koanf:"use_path_style"`
	PublicBaseURL     string        `koanf:"public_base_url"`
	PresignExpiration time.Duration `koanf:"presign_expiration"`
}

// StoreConfig holds the business rules of the shop.
type StoreConfig struct {
	Name                   string        `koanf:"name"`
	Currency               string        `koanf:"currency" validate:"omitempty,len=3"`
	ReferencePrefix        string        `koanf:"reference_prefix"`
	FlatShippingInCents    int64         `koanf:"flat_shipping_in_cents" validate:"gte=0"`
	FreeShippingFromCents  int64         `koanf:"free_shipping_from_cents" validate:"gte=0"`
	PendingOrderTTL        time.Duration `koanf:"pending_order_ttl"`
	SupportWhatsAppPhone   string        `koanf:"support_whatsapp_phone"`
	CatalogCacheTTL        time.Duration `koanf:"catalog_cache_ttl"`
	ChatbotFallbackHandoff int           `koanf:"chatbot_fallback_handoff"`
}

// JobsConfig tunes the asynq worker and the periodic tasks.
type JobsConfig struct {
	Concurrency       int    `koanf:"concurrency"`
	ExpirePendingCron string `koanf:"expire_pending_cron"`
}

// applyDefaults fills optional blocks that were left empty in the environment.
func (c *Config) applyDefaults() {
	if c.Auth.JWTTTL == 0 {
		c.Auth.JWTTTL = 72 * time.Hour
	}
	if c.Auth.JWTIssuer == "" {
		c.Auth.JWTIssuer = "storefront"
	}
	if c.Auth.AdminRole == "" {
		c.Auth.AdminRole = "org:admin"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}

	if c.Integration.Wompi.CheckoutURL == "" {
		c.Integration.Wompi.CheckoutURL = "https://checkout.wompi.co/p/"
	}
	if c.Integration.WhatsApp.BaseURL == "" {
		c.Integration.WhatsApp.BaseURL = "https://graph.facebook.com/v21.0"
	}
	if c.Integration.Kafka.Topic == "" {
		c.Integration.Kafka.Topic = "storefront.orders"
	}
	if c.Integration.Storage.PresignExpiration == 0 {
		c.Integration.Storage.PresignExpiration = 15 * time.Minute
	}

	if c.Store.Name == "" {
		c.Store.Name = "Storefront"
	}
	if c.Store.Currency == "" {
		c.Store.Currency = "COP"
	}
	if c.Store.ReferencePrefix == "" {
		c.Store.ReferencePrefix = "ORD"
	}
	if c.Store.PendingOrderTTL == 0 {
		c.Store.PendingOrderTTL = 24 * time.Hour
	}
	if c.Store.CatalogCacheTTL == 0 {
		c.Store.CatalogCacheTTL = 5 * time.Minute
	}
	if c.Store.ChatbotFallbackHandoff == 0 {
		c.Store.ChatbotFallbackHandoff = 3
	}

	if c.Jobs.Concurrency == 0 {
		c.Jobs.Concurrency = 10
	}
	if c.Jobs.ExpirePendingCron == "" {
		c.Jobs.ExpirePendingCron = "*/15 * * * *"
	}
}

// envKey turns STOREFRONT_DATABASE__HOST into database.host.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config, applies defaults, validates it and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix STOREFRONT_
//   - Converts env keys into koanf keys ("__" becomes ".")
//   - Unmarshals into Config and fills defaults
//   - Validates struct tags, cron specs and the observability block
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	} else {
		mainConfig.Observability.fillDefaults()
	}

	// Service name is fixed; the environment always follows primary.env.
	mainConfig.Observability.ServiceName = "storefront"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cron.ParseStandard(mainConfig.Jobs.ExpirePendingCron); err != nil {
		return nil, fmt.Errorf("invalid jobs.expire_pending_cron %q: %w", mainConfig.Jobs.ExpirePendingCron, err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/logger"
	"github.com/deppfellow/storefront/internal/server"
)

// Echo context keys.
const (
	// UserIDKey holds the Clerk subject of a staff member.
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"

	// CustomerIDKey holds the uuid.UUID of a signed-in customer.
	CustomerIDKey = "customer_id"
	CartTokenKey  = "cart_token"

	LoggerKey = "logger"
)

// ContextEnhancer attaches a request-scoped logger to every request.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext builds a logger carrying the request id, route, client ip
// and New Relic trace ids.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, contextLogger)
			return next(c)
		}
	}
}

func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
}

// withLoggerField adds one field to the request logger once authentication
// has identified the caller.
func withLoggerField(c echo.Context, key, value string) {
	setLogger(c, GetLogger(c).With().Str(key, value).Logger())
}

// GetUserID returns the staff member id, or "".
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetCustomerID returns the signed-in customer, or nil for guests.
func GetCustomerID(c echo.Context) *uuid.UUID {
	if id, ok := c.Get(CustomerIDKey).(uuid.UUID); ok {
		return &id
	}
	return nil
}

func GetCartToken(c echo.Context) string {
	if t, ok := c.Get(CartTokenKey).(string); ok {
		return t
	}
	return ""
}

// GetLogger returns the request logger, or a no-op logger outside a request.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	l := zerolog.Nop()
	return &l
}

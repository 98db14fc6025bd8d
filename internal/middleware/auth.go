package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/token"
	"github.com/deppfellow/storefront/internal/server"
)

// CartTokenHeader carries the guest cart token in both directions.
const CartTokenHeader = "X-Cart-Token"

// AuthMiddleware authenticates staff through Clerk and customers through
// the store's own JWTs.
type AuthMiddleware struct {
	server *server.Server
	tokens *token.Manager
}

func NewAuthMiddleware(s *server.Server, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		tokens: tokens,
	}
}

// RequireAdmin verifies the Clerk session in the Authorization header and
// requires the configured organization role.
func (auth *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized)),
		))(
		func(c echo.Context) error {
			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				GetLogger(c).Warn().Msg("clerk session claims missing from context")
				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			c.Set(UserIDKey, claims.Subject)
			c.Set(UserRoleKey, claims.ActiveOrganizationRole)
			withLoggerField(c, "user_id", claims.Subject)

			if claims.ActiveOrganizationRole != auth.server.Config.Auth.AdminRole {
				GetLogger(c).Warn().
					Str("role", claims.ActiveOrganizationRole).
					Msg("staff member without admin role")
				return errs.NewForbiddenError("You do not have access to the store admin", true)
			}
			return next(c)
		})
}

// TokenFromQuery copies ?token= into the Authorization header. Browsers
// cannot set headers on websocket upgrades.
func TokenFromQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Header.Get(echo.HeaderAuthorization) == "" {
			if t := c.QueryParam("token"); t != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+t)
			}
		}
		return next(c)
	}
}

func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		auth.server.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write unauthorized response")
		return
	}
	auth.server.Logger.Warn().Str("path", r.URL.Path).Msg("clerk rejected the request")
}

// OptionalCustomer identifies the customer when a bearer token is present.
// Requests without one continue as guests; a bad token is rejected so the
// client can drop it.
func (auth *AuthMiddleware) OptionalCustomer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			return next(c)
		}
		if err := auth.authenticateCustomer(c, raw); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireCustomer rejects requests without a valid customer token.
func (auth *AuthMiddleware) RequireCustomer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			return errs.NewUnauthorizedError("Sign in to continue", true)
		}
		if err := auth.authenticateCustomer(c, raw); err != nil {
			return err
		}
		return next(c)
	}
}

func (auth *AuthMiddleware) authenticateCustomer(c echo.Context, raw string) error {
	claims, err := auth.tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return errs.NewUnauthorizedError("Your session expired, sign in again", true)
		}
		GetLogger(c).Debug().Err(err).Msg("invalid customer token")
		return errs.NewUnauthorizedError("Unauthorized", false)
	}

	customerID, err := claims.UserID()
	if err != nil {
		return errs.NewUnauthorizedError("Unauthorized", false)
	}

	c.Set(CustomerIDKey, customerID)
	withLoggerField(c, "customer_id", customerID.String())
	return nil
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// CartToken reads the guest cart token. Values that are not cart tokens are
// ignored and the request continues without a cart.
func CartToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := strings.TrimSpace(c.Request().Header.Get(CartTokenHeader)); raw != "" {
			if _, err := uuid.Parse(raw); err == nil {
				c.Set(CartTokenKey, raw)
			}
		}
		return next(c)
	}
}

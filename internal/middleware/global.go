package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/sqlerr"
)

// GlobalMiddlewares groups the middleware every route runs and the global
// error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS exposes the cart token header so the storefront can persist new carts.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			CartTokenHeader,
			RequestIDHeader,
		},
		ExposeHeaders: []string{CartTokenHeader, RequestIDHeader, echo.HeaderContentDisposition},
	})
}

// responseStatus is the status the client will see. A handler error is
// not written until the error handler runs, so it is read off the error.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code
	}
	return http.StatusInternalServerError
}

// RequestLogger writes one "API" line per request, leveled by status. Cart
// and customer ids are included so a shopper's requests can be followed.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogError:    true,
		LogLatency:  true,
		LogMethod:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := responseStatus(c, v.Error)
			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				e = logger.Error().Err(v.Error)
			case status >= http.StatusBadRequest:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if token := GetCartToken(c); token != "" {
				e = e.Str("cart_token", token)
			}
			if customerID := GetCustomerID(c); customerID != nil {
				e = e.Str("customer_id", customerID.String())
			}

			e.Dur("latency", v.Latency).
				Int("status", status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("ip", v.RemoteIP).
				Msg("API")
			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// BodyLimit caps request bodies; the largest legitimate payload is a product.
func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit("1M")
}

// toHTTPError normalizes any returned error into the client error shape.
// Unknown routes read "Route not found" and database errors go through sqlerr.
func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusNotFound {
			return errs.NewNotFoundError("Route not found", false, nil)
		}
		message, ok := echoErr.Message.(string)
		if !ok {
			message = http.StatusText(echoErr.Code)
		}
		return &errs.HTTPError{
			Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
			Message: message,
			Status:  echoErr.Code,
		}
	}

	if errors.As(sqlerr.HandleError(err), &httpErr) {
		return httpErr
	}
	return errs.NewInternalServerError()
}

// GlobalErrorHandler logs the error against the request and writes it as JSON.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	logger := GetLogger(c)
	event := logger.Warn()
	if httpErr.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Str("path", c.Path()).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}
	if err := c.JSON(httpErr.Status, httpErr); err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/storefront/internal/server"
)

// TracingMiddleware instruments requests with New Relic. Every method is a
// pass-through when the agent is disabled.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}

func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return passThrough
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing tags the transaction with the shopper behind the request
// and notices handler errors. Register it after NewRelicMiddleware.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("request.id", GetRequestID(c))
			txn.AddAttribute("http.real_ip", c.RealIP())

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			// Auth and cart middleware run per route, below this one.
			switch {
			case GetUserID(c) != "":
				txn.AddAttribute("shopper.kind", "admin")
				txn.AddAttribute("user.id", GetUserID(c))
			case GetCustomerID(c) != nil:
				txn.AddAttribute("shopper.kind", "customer")
				txn.AddAttribute("customer.id", GetCustomerID(c).String())
			default:
				txn.AddAttribute("shopper.kind", "guest")
			}
			txn.AddAttribute("cart.present", GetCartToken(c) != "")
			txn.AddAttribute("http.status_code", c.Response().Status)
			return err
		}
	}
}

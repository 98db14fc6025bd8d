// Package router builds the Echo instance: global middleware in order, then
// the system, storefront and admin route groups.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/storefront/internal/handler"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/server"
)

func NewRouter(s *server.Server, h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Use(
		m.Global.CORS(),
		m.Global.Secure(),
		m.Global.BodyLimit(),
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	registerStoreRoutes(api, h, m)
	registerAdminRoutes(api, h, m)

	return router
}

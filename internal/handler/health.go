package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/middleware"
	"github.com/deppfellow/storefront/internal/server"
)

// HealthHandler reports whether the API and its dependencies are reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type healthCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]healthCheck `json:"checks"`
}

func (h *HealthHandler) checksConfig() config.HealthChecksConfig {
	if obs := h.server.Config.Observability; obs != nil {
		return obs.HealthChecks
	}
	return config.DefaultObservabilityConfig().HealthChecks
}

// CheckHealth pings the configured dependencies. Any failure reports 503
// since webhook claims and the job queue depend on Redis.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	resp := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]healthCheck, 2),
	}

	cfg := h.checksConfig()
	pings := map[string]func(context.Context) error{}
	if h.server.DB != nil && cfg.Runs("database") {
		pings["database"] = h.server.DB.Pool.Ping
	}
	if h.server.Redis != nil && cfg.Runs("redis") {
		pings["redis"] = func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}
	}

	for name, ping := range pings {
		check := h.run(c.Request().Context(), &logger, cfg.Timeout, name, ping)
		if check.Status != "healthy" {
			resp.Status = "unhealthy"
		}
		resp.Checks[name] = check
	}

	if resp.Status != "healthy" {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) run(parent context.Context, logger *zerolog.Logger, timeout time.Duration, name string, ping func(context.Context) error) healthCheck {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)
	if err == nil {
		return healthCheck{Status: "healthy", ResponseTime: elapsed.String()}
	}

	logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("dependency health check failed")
	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]interface{}{
			"check_type":       name,
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
	}
	return healthCheck{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
}

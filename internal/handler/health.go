package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// errNotConfigured is reported when a check is enabled but the dependency was
// never set up on the server.
var errNotConfigured = errors.New("not configured")

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthHandler reports whether the service and its dependencies are
// reachable. Load balancers and uptime monitors poll it.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs HealthHandler. Which dependencies are pinged is
// decided per request from observability.health_checks in config.
func NewHealthHandler(s *server.Server, services *service.Services) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s, services),
	}
}

// CheckResult is the outcome of one dependency ping.
type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthReport is the /status body.
type HealthReport struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// Check runs the configured dependency checks. Each ping is bounded by
// health_checks.timeout.
//
// The report is healthy only when every check passes. With checks disabled it
// is always healthy, so the endpoint still works as a liveness probe.
func (h *HealthHandler) Check(ctx context.Context, logger *zerolog.Logger) (*HealthReport, bool) {
	start := time.Now()
	cfg := h.server.Config

	report := &HealthReport{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: cfg.Primary.Env,
		Checks:      map[string]CheckResult{},
	}

	obs := cfg.Observability
	if obs == nil || !obs.HealthChecks.Enabled {
		return report, true
	}

	timeout := obs.HealthChecks.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	// run executes one check and records its result in the report. Failures
	// are also sent to New Relic as HealthCheckError custom events.
	run := func(name string, ping func(ctx context.Context) error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		checkStart := time.Now()
		err := ping(ctx)
		elapsed := time.Since(checkStart)

		if err != nil {
			report.Checks[name] = CheckResult{Status: statusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}
			report.Status = statusUnhealthy

			logger.Error().Err(err).Dur("response_time", elapsed).Msgf("%s health check failed", name)
			h.recordFailure(map[string]interface{}{
				"check_type":       name,
				"operation":        "health_check",
				"error_type":       name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
			return
		}

		report.Checks[name] = CheckResult{Status: statusHealthy, ResponseTime: elapsed.String()}
		logger.Debug().Dur("response_time", elapsed).Msgf("%s health check passed", name)
	}

	if obs.HasCheck("database") {
		run("database", func(ctx context.Context) error {
			if h.server.DB == nil || h.server.DB.Pool == nil {
				return errNotConfigured
			}
			return h.server.DB.Pool.Ping(ctx)
		})
	}

	if obs.HasCheck("redis") {
		run("redis", func(ctx context.Context) error {
			if h.server.Redis == nil {
				return errNotConfigured
			}
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	// One overall event per failed check run, in addition to the per-check ones,
	// so alerts can count failing runs rather than failing dependencies.
	healthy := report.Status == statusHealthy
	if !healthy {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		h.recordFailure(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
	}

	return report, healthy
}

// CheckHealth is the Echo endpoint: 200 when every check passes, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	report, healthy := h.Check(c.Request().Context(), &logger)
	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, report)
	}
	return c.JSON(http.StatusOK, report)
}

// ServeHTTP is the net/http form of CheckHealth.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str("operation", "health_check").Logger()

	report, healthy := h.Check(r.Context(), &logger)
	if !healthy {
		middleware.WriteJSON(w, http.StatusServiceUnavailable, report)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}

// recordFailure is a no-op when New Relic is disabled.
func (h *HealthHandler) recordFailure(attrs map[string]interface{}) {
	if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
		h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
	}
}

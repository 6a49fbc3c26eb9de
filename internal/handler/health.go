package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/deppfellow/budgetbud/internal/middleware"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 5 * time.Second

// dependencyCheck pings one backing service.
type dependencyCheck struct {
	name string
	ping func(ctx context.Context) error
}

type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// HealthHandler serves /status. It answers 503 when PostgreSQL or Redis
// does not respond.
type HealthHandler struct {
	Handler
	checks []dependencyCheck
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	var checks []dependencyCheck
	if s.DB != nil {
		checks = append(checks, dependencyCheck{name: "database", ping: s.DB.Pool.Ping})
	}
	if s.Redis != nil {
		checks = append(checks, dependencyCheck{name: "redis", ping: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}
	return &HealthHandler{Handler: NewHandler(s), checks: checks}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]CheckResult, len(h.checks)),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	var mu sync.Mutex
	var g errgroup.Group
	for _, check := range h.checks {
		g.Go(func() error {
			checkStart := time.Now()
			err := check.ping(ctx)
			result := CheckResult{Status: "healthy", ResponseTime: time.Since(checkStart).String()}
			if err != nil {
				result.Status = "unhealthy"
				result.Error = err.Error()
				logger.Error().Err(err).Str("check", check.name).Msg("health check failed")
				h.recordFailure(check.name, err)
			}

			mu.Lock()
			response.Checks[check.name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	for _, result := range response.Checks {
		if result.Status != "healthy" {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Str("status", response.Status).
		Msg("health check finished")

	return c.JSON(status, response)
}

func (h *HealthHandler) recordFailure(check string, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":    check,
		"error_message": err.Error(),
	})
}

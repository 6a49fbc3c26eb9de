package middleware

import (
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups all middleware components used by the HTTP server so
// the router receives a single object.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// Auth verifies access tokens and attaches the user to the request.
	Auth *AuthMiddleware

	// ContextEnhancer stores a request-scoped logger on every request.
	ContextEnhancer *ContextEnhancer

	// Tracing installs New Relic and adds custom attributes.
	Tracing *TracingMiddleware

	// RateLimit throttles the unauthenticated auth endpoints per client IP.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components. Tracing degrades to a
// no-op when New Relic is not configured.
func NewMiddlewares(s *server.Server, tokens TokenAuthenticator) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, tokens),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s, DefaultAuthRate, DefaultAuthBurst),
	}
}

package middleware

import (
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares is a lightweight container that groups all middleware components
// used by the HTTP server.
//
// Both routers (Echo and chi) take their middleware from the same container, so
// shared dependencies like *server.Server and the New Relic application are
// wired in one place instead of being scattered through routing code.
type Middlewares struct {
	// Global holds common middleware used across the whole API:
	// CORS, request logging, recovery, secure headers, and the global error handler.
	Global *GlobalMiddlewares

	// Auth authenticates requests with the configured provider (Clerk or the
	// local header provider) and attaches the subject to the request.
	Auth *AuthMiddleware

	// ContextEnhancer enriches each request with a request-scoped logger
	// (request_id, method, path, ip, optional user & trace metadata).
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware and helpers to attach custom attributes
	// and notice errors on transactions.
	Tracing *TracingMiddleware

	// RateLimit enforces the per-IP token bucket and records New Relic custom
	// events when a client is throttled.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components using the application container.
//
// It also extracts the New Relic application instance (if configured) from the server's
// LoggerService and injects it into TracingMiddleware.
//
// Behavior when New Relic is not configured:
// - nrApp will be nil.
// - tracing middleware degrades into a no-op (no transactions, no attributes).
func NewMiddlewares(s *server.Server) *Middlewares {
	// LoggerService is responsible for initializing New Relic.
	// If New Relic is disabled or misconfigured, GetApplication() returns nil.
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}

package middleware

import (
	"context"

	"github.com/deppfellow/learnhub/internal/logger"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Echo context keys.
const (
	// UserIDKey holds the auth subject once RequireAuth has run.
	UserIDKey = "user_id"

	// LoggerKey holds the request-scoped *zerolog.Logger.
	LoggerKey = "logger"
)

type subjectKey struct{}

// SubjectFromContext returns the authenticated subject set by AuthMiddleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok && subject != ""
}

// ContextEnhancer builds the request-scoped logger: request id, method,
// path, ip and the New Relic trace ids when a transaction exists.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer constructs ContextEnhancer around the application container,
// whose base logger every request logger is derived from.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns an Echo middleware.
//
// For every request, it:
//  1. creates a logger with the request fields
//  2. adds trace context if a New Relic transaction exists
//  3. stores that logger in the Echo context and the Go request context
//
// The user is not known yet at this point (RequireAuth runs per route group,
// after the global chain); RequireAuth adds user_id to the logger itself.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// c.Path() is the route template (e.g. "/api/courses/:id"), which keeps
			// the path field low-cardinality.
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			// The transaction is set by NewRelicMiddleware, which runs earlier.
			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			// Handlers read it from the Echo context; services and repositories
			// only see context.Context and use zerolog.Ctx.
			c.Set(LoggerKey, &contextLogger)
			c.SetRequest(c.Request().WithContext(contextLogger.WithContext(c.Request().Context())))

			return next(c)
		}
	}
}

// GetUserID returns the subject set by RequireAuth, or "".
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetLogger retrieves the request-scoped logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

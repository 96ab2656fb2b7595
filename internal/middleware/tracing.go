package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/learnhub/internal/server"
)

// TracingMiddleware owns New Relic related Echo middleware.
//
// It needs:
//   - server: for the config (router variant)
//   - nrApp: the New Relic application instance (nil if New Relic disabled)
//
// This middleware has two layers:
//  1. NewRelicMiddleware() installs New Relic transaction handling into Echo
//  2. EnhanceTracing() adds custom attributes and notices errors
//
// Without an application both layers are no-ops.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

// NewTracingMiddleware constructs TracingMiddleware.
//
// nrApp may be nil; every method then returns a pass-through middleware.
func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the New Relic Echo middleware.
//
// What it does:
//   - If nrApp is nil, return a no-op middleware (passes request through unchanged).
//   - If nrApp exists, return nrecho.Middleware(tm.nrApp) which starts a New Relic
//     transaction for each request and stores it in the request context.
//
// It must run before EnhanceTracing and ContextEnhancer, both of which read the
// transaction back from the context.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds custom attributes to the current transaction and
// reports server errors.
//
// Attributes set before the handler runs:
//   - http.real_ip, http.user_agent
//   - app.router ("echo" or "chi")
//   - request.id
//
// After the handler it adds user.id (when authenticated) and http.status_code.
// Only 5xx errors are noticed; client errors are expected traffic. Errors are
// wrapped with nrpkgerrors so the pkg/errors stack trace reaches New Relic.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// No transaction means New Relic is disabled or NewRelicMiddleware did not run.
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())
			txn.AddAttribute("app.router", tm.server.Config.Server.Router)
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// RequireAuth runs inside this middleware, so the user is known now.
			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}
			// The error has not reached GlobalErrorHandler yet, so the response
			// status is not written; derive it the same way the handler will.
			if err != nil {
				httpErr := ToHTTPError(err)
				if httpErr.Status >= 500 {
					txn.NoticeError(nrpkgerrors.Wrap(err))
				}
				txn.AddAttribute("http.status_code", httpErr.Status)
			} else {
				txn.AddAttribute("http.status_code", c.Response().Status)
			}

			return err
		}
	}
}

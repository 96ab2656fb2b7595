package middleware

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the "global" middleware and the global error handler.
//
// The struct gives every middleware access to shared app dependencies from
// *server.Server, mainly config (CORS origins, environment) and logging.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
// It stores a pointer to the application container (*server.Server) so all global
// middleware can read config values and services when needed.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORSMaxAge is how long, in seconds, browsers may cache a preflight answer.
const CORSMaxAge = 600

// CORS allows the configured frontend origins to call the API. Preflight
// answers are cacheable for CORSMaxAge seconds and X-Request-ID is exposed
// so the frontend can quote it in bug reports.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  global.server.Config.Server.CORSAllowedOrigins,
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, RequestIDHeader, UserIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        CORSMaxAge,
	})
}

// RequestLogger logs one line per request with method, uri, status, latency,
// request id and, once authenticated, the user id.
//
// The level follows the outcome: 5xx and unexpected errors log at error,
// 4xx at warn, everything else at info.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// The error handler runs after this middleware returns, so the
			// status has to be read from the error itself.
			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				} else {
					statusCode = http.StatusInternalServerError
				}
			}

			// The request-scoped logger already carries request_id, method,
			// path, ip and trace ids.
			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns a panic in a handler into a 500 handled by GlobalErrorHandler
// instead of crashing the process.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure sets the standard protective response headers
// (X-XSS-Protection, X-Content-Type-Options, X-Frame-Options).
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the Echo HTTPErrorHandler. Every error leaves as an
// errs.HTTPError body; database errors go through sqlerr and anything
// unknown becomes an opaque 500.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := ToHTTPError(err)

	// Server errors log with the pkg/errors stack; client errors are expected
	// and only show up at debug level.
	logger := GetLogger(c)
	if httpErr.Status >= http.StatusInternalServerError {
		logger.Error().Stack().
			Err(err).
			Int("status", httpErr.Status).
			Str("error_code", httpErr.Code).
			Msg(httpErr.Message)
	} else {
		logger.Debug().
			Err(err).
			Int("status", httpErr.Status).
			Str("error_code", httpErr.Code).
			Msg(httpErr.Message)
	}

	// A handler that already streamed a response cannot change its status.
	if c.Response().Committed {
		return
	}
	// HEAD responses must not carry a body.
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, httpErr.Body())
}

// ToHTTPError converts any handler error into the API error type. The chi
// router uses it as well.
//
// Resolution order:
//  1. an *errs.HTTPError anywhere in the chain is returned as is
//  2. Echo's own errors (unknown route, rate limiter) keep their status
//  3. database errors are translated by sqlerr (404 for missing rows, 400 for
//     constraint violations)
//  4. anything else is an opaque 500, so internals never leak to clients
func ToHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		// Route misses and throttling get the same bodies the chi router sends.
		switch echoErr.Code {
		case http.StatusNotFound:
			return errs.NewNotFoundError("Route not found", false, nil)
		case http.StatusTooManyRequests:
			return errs.NewTooManyRequestsError()
		}
		message := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			message = msg
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

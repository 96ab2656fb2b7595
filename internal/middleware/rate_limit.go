package middleware

import (
	"math"
	"net"
	"net/http"
	"time"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// rateLimitExpiry is how long an idle client's limiter is kept.
const rateLimitExpiry = 3 * time.Minute

// RateLimitMiddleware limits requests per client IP with a token bucket
// kept in memory. Server.RateLimit = 0 disables it.
type RateLimitMiddleware struct {
	server *server.Server
	store  *middleware.RateLimiterMemoryStore
}

// NewRateLimitMiddleware builds the limiter store from Server.RateLimit.
//
// The burst is twice the per-second rate (rounded up) so a page that fires a
// handful of requests at once is not throttled. With a rate of 0 no store is
// created and both Limit and Handler pass requests through.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	rl := &RateLimitMiddleware{server: s}
	if limit := s.Config.Server.RateLimit; limit > 0 {
		rl.store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     int(math.Ceil(limit * 2)),
			ExpiresIn: rateLimitExpiry,
		})
	}
	return rl
}

// Limit is the Echo middleware.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	if r.store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewInternalServerError()
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			return errs.NewTooManyRequestsError()
		},
	})
}

// Handler is the net/http form for the chi router; it shares the store
// with Limit.
func (r *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	if r.store == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}
		if allowed, _ := r.store.Allow(ip); !allowed {
			r.RecordRateLimitHit(req.URL.Path)
			WriteError(w, req, errs.NewTooManyRequestsError())
			return
		}
		next.ServeHTTP(w, req)
	})
}

// RecordRateLimitHit sends a RateLimitHit custom event to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// UserIDHeader carries the subject when the header provider is active.
const UserIDHeader = "X-User-ID"

// AuthMiddleware authenticates requests with the configured provider and
// exposes the subject (users.external_id) to handlers.
type AuthMiddleware struct {
	server *server.Server
}

// NewAuthMiddleware constructs AuthMiddleware. The provider is read from config on
// each request, so the same instance serves both routers.
func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// Handler is the net/http form used by the chi router. On success the
// subject is stored in the request context, see SubjectFromContext.
func (auth *AuthMiddleware) Handler(next http.Handler) http.Handler {
	if auth.server.Config.Auth.Provider == config.AuthProviderHeader {
		return auth.headerAuth(next)
	}
	return auth.clerkAuth(next)
}

// headerAuth trusts X-User-ID. Config loading refuses this provider
// outside the local environment.
func (auth *AuthMiddleware) headerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if subject == "" {
			auth.unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSubject(r.Context(), subject)))
	})
}

// clerkAuth verifies the Clerk session token from the Authorization header.
//
// clerkhttp.WithHeaderAuthorization does the verification and puts the session
// claims in the request context; a missing or invalid token goes to the failure
// handler. The Clerk key itself is set once by service.NewAuthService.
func (auth *AuthMiddleware) clerkAuth(next http.Handler) http.Handler {
	withClaims := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := clerk.SessionClaimsFromContext(r.Context())
		if !ok || claims.Subject == "" {
			auth.unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSubject(r.Context(), claims.Subject)))
	})

	return clerkhttp.WithHeaderAuthorization(
		clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.unauthorized)),
	)(withClaims)
}

// unauthorized writes the 401 body. It is shared by both providers and both
// routers, so every auth failure looks the same to clients.
func (auth *AuthMiddleware) unauthorized(w http.ResponseWriter, r *http.Request) {
	zerolog.Ctx(r.Context()).Warn().Str("function", "RequireAuth").Msg("request rejected: missing or invalid credentials")
	WriteJSON(w, http.StatusUnauthorized, errs.NewUnauthorizedError("Unauthorized", false).Body())
}

// RequireAuth is the Echo form of Handler. It also sets "user_id" on the
// Echo context for handlers, logging and tracing.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	// Reuse the net/http middleware so both routers authenticate identically.
	return echo.WrapMiddleware(auth.Handler)(func(c echo.Context) error {
		subject, ok := SubjectFromContext(c.Request().Context())
		if !ok {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		// The logger on the Echo context was built before authentication ran.
		c.Set(UserIDKey, subject)
		if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
			userLogger := l.With().Str("user_id", subject).Logger()
			c.Set(LoggerKey, &userLogger)
		}

		return next(c)
	})
}

// withSubject stores the subject and adds it to the request logger.
func withSubject(ctx context.Context, subject string) context.Context {
	ctx = context.WithValue(ctx, subjectKey{}, subject)
	userLogger := zerolog.Ctx(ctx).With().Str("user_id", subject).Logger()
	return userLogger.WithContext(ctx)
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/handler"
	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// corsOptions mirrors the Echo CORS config: the configured origins, the
// auth headers and the request id exposed to browsers.
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader, middleware.UserIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         middleware.CORSMaxAge,
	}
}

// NewRouter builds the chi router with the same routes as the Echo one.
func NewRouter(s *server.Server, services *service.Services) http.Handler {
	mw := middleware.NewMiddlewares(s)
	api := NewAPI(s, services)
	health := handler.NewHealthHandler(s, services)
	docs := handler.NewOpenAPIHandler(s, services)

	r := chi.NewRouter()

	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		hlog.NewHandler(*s.Logger),
		requestContext,
		hlog.AccessHandler(logRequest),
		chimiddleware.Recoverer,
		cors.Handler(corsOptions(s.Config.Server.CORSAllowedOrigins)),
		mw.RateLimit.Handler,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errs.NewNotFoundError("Route not found", false, nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, &errs.HTTPError{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "Method not allowed",
			Status:  http.StatusMethodNotAllowed,
		})
	})

	r.Get("/status", health.ServeHTTP)
	r.Head("/status", health.ServeHTTP)
	r.Get("/docs", docs.ServeHTTP)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(handler.StaticDir))))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.Auth.Handler)
				r.Post("/", api.createUser)
				r.Get("/me", api.getMe)
				r.Put("/me", api.updateMe)
				r.Get("/me/enrollments", api.myEnrollments)
				r.Get("/me/certificates", api.myCertificates)
				r.Get("/me/stats", api.myStats)
			})
			r.Get("/{id}", api.getUser)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", api.listCourses)
			r.Get("/categories", api.listCategories)
			r.Get("/{id}", api.getCourse)
			r.Get("/{id}/reviews", api.listReviews)

			r.Group(func(r chi.Router) {
				r.Use(mw.Auth.Handler)
				r.Post("/", api.createCourse)
				r.Put("/{id}", api.updateCourse)
				r.Post("/{id}/reviews", api.createReview)
			})
		})

		r.Route("/lessons", func(r chi.Router) {
			r.Get("/course/{courseId}", api.listCourseLessons)
			r.Get("/{id}", api.getLesson)

			r.Group(func(r chi.Router) {
				r.Use(mw.Auth.Handler)
				r.Post("/", api.createLesson)
				r.Put("/{id}", api.updateLesson)
				r.Delete("/{id}", api.deleteLesson)
				r.Post("/{id}/complete", api.completeLesson)
			})
		})

		r.Route("/enrollments", func(r chi.Router) {
			r.Use(mw.Auth.Handler)
			r.Post("/", api.enroll)
			r.Get("/user/{userId}", api.listUserEnrollments)
			r.Get("/{id}", api.getEnrollment)
			r.Put("/{id}", api.updateEnrollment)
			r.Delete("/{id}", api.deleteEnrollment)
			r.Get("/{id}/progress", api.enrollmentProgress)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/", api.searchAll)
			r.Get("/courses", api.searchCourses)
			r.Get("/lessons", api.searchLessons)
			r.Get("/suggestions", api.suggestions)
		})
	})

	return r
}

// requestContext adds the request id, method, path and ip to the request
// logger and echoes the id back to the client.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := chimiddleware.GetReqID(r.Context())
		w.Header().Set(middleware.RequestIDHeader, requestID)

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("ip", r.RemoteAddr)
		})

		next.ServeHTTP(w, r)
	})
}

// logRequest writes the access log line at a level matching the status.
func logRequest(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)

	var e *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		e = logger.Error()
	case status >= http.StatusBadRequest:
		e = logger.Warn()
	default:
		e = logger.Info()
	}

	e.Int("status", status).
		Int("size", size).
		Dur("latency", duration).
		Str("uri", r.RequestURI).
		Msg("API")
}

// Package router builds the Echo router: the global middleware chain,
// the /api route groups and the system routes.
package router

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/handler"
	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo router.
//
// Rate limiting runs first, so throttled requests cost nothing else. The request
// id is assigned before tracing and the context enhancer, which both read it,
// and New Relic must start its transaction before the logger looks for trace ids.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	router.Use(
		mw.RateLimit.Limit(),
		mw.Global.CORS(),
		mw.Global.Secure(),
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	registerUserRoutes(api, h, mw.Auth)
	registerCourseRoutes(api, h, mw.Auth)
	registerLessonRoutes(api, h, mw.Auth)
	registerEnrollmentRoutes(api, h, mw.Auth)
	registerSearchRoutes(api, h)

	return router
}

func registerUserRoutes(api *echo.Group, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	users := api.Group("/users")

	users.GET("/:id", handler.Handle[model.IDParam](h.Users.Get, http.StatusOK))

	me := users.Group("", auth.RequireAuth)
	me.POST("", handler.Handle[model.CreateUserPayload](h.Users.Create, http.StatusOK))
	me.GET("/me", handler.Handle[model.EmptyPayload](h.Users.Me, http.StatusOK))
	me.PUT("/me", handler.Handle[model.UpdateUserPayload](h.Users.UpdateMe, http.StatusOK))
	me.GET("/me/enrollments", handler.Handle[model.EmptyPayload](h.Users.Enrollments, http.StatusOK))
	me.GET("/me/certificates", handler.Handle[model.EmptyPayload](h.Users.Certificates, http.StatusOK))
	me.GET("/me/stats", handler.Handle[model.EmptyPayload](h.Users.Stats, http.StatusOK))
}

func registerCourseRoutes(api *echo.Group, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	courses := api.Group("/courses")

	courses.GET("", handler.Handle[model.ListCoursesQuery](h.Courses.List, http.StatusOK))
	courses.GET("/categories", handler.Handle[model.EmptyPayload](h.Courses.Categories, http.StatusOK))
	courses.GET("/:id", handler.Handle[model.IDParam](h.Courses.Get, http.StatusOK))
	courses.GET("/:id/reviews", handler.Handle[model.ListReviewsQuery](h.Courses.Reviews, http.StatusOK))

	courses.POST("", handler.Handle[model.CreateCoursePayload](h.Courses.Create, http.StatusCreated), auth.RequireAuth)
	courses.PUT("/:id", handler.Handle[model.UpdateCoursePayload](h.Courses.Update, http.StatusOK), auth.RequireAuth)
	courses.POST("/:id/reviews", handler.Handle[model.CreateReviewPayload](h.Courses.Review, http.StatusCreated), auth.RequireAuth)
}

func registerLessonRoutes(api *echo.Group, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	lessons := api.Group("/lessons")

	lessons.GET("/course/:courseId", handler.Handle[model.ListCourseLessonsPayload](h.Lessons.ListByCourse, http.StatusOK))
	lessons.GET("/:id", handler.Handle[model.IDParam](h.Lessons.Get, http.StatusOK))

	lessons.POST("", handler.Handle[model.CreateLessonPayload](h.Lessons.Create, http.StatusCreated), auth.RequireAuth)
	lessons.PUT("/:id", handler.Handle[model.UpdateLessonPayload](h.Lessons.Update, http.StatusOK), auth.RequireAuth)
	lessons.DELETE("/:id", handler.HandleNoContent[model.IDParam](h.Lessons.Delete, http.StatusNoContent), auth.RequireAuth)
	lessons.POST("/:id/complete", handler.Handle[model.CompleteLessonPayload](h.Lessons.Complete, http.StatusOK), auth.RequireAuth)
}

func registerEnrollmentRoutes(api *echo.Group, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	enrollments := api.Group("/enrollments", auth.RequireAuth)

	enrollments.POST("", handler.Handle[model.EnrollPayload](h.Enrollments.Enroll, http.StatusOK))
	enrollments.GET("/user/:userId", handler.Handle[model.ListUserEnrollmentsPayload](h.Enrollments.ListByUser, http.StatusOK))
	enrollments.GET("/:id", handler.Handle[model.IDParam](h.Enrollments.Get, http.StatusOK))
	enrollments.PUT("/:id", handler.Handle[model.UpdateEnrollmentPayload](h.Enrollments.UpdateStatus, http.StatusOK))
	enrollments.DELETE("/:id", handler.HandleNoContent[model.IDParam](h.Enrollments.Delete, http.StatusNoContent))
	enrollments.GET("/:id/progress", handler.Handle[model.IDParam](h.Enrollments.Progress, http.StatusOK))
}

func registerSearchRoutes(api *echo.Group, h *handler.Handlers) {
	search := api.Group("/search")

	search.GET("", handler.Handle[model.GlobalSearchQuery](h.Search.Global, http.StatusOK))
	search.GET("/courses", handler.Handle[model.SearchCoursesQuery](h.Search.Courses, http.StatusOK))
	search.GET("/lessons", handler.Handle[model.SearchLessonsQuery](h.Search.Lessons, http.StatusOK))
	search.GET("/suggestions", handler.Handle[model.SuggestionsQuery](h.Search.Suggestions, http.StatusOK))
}

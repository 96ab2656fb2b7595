package handler

import (
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/labstack/echo/v4"
)

// SearchHandler serves /api/search. All routes are public and only see
// published courses.
type SearchHandler struct {
	Handler
}

// NewSearchHandler constructs SearchHandler.
func NewSearchHandler(s *server.Server, services *service.Services) *SearchHandler {
	return &SearchHandler{Handler: NewHandler(s, services)}
}

// Courses handles GET /api/search/courses.
func (h *SearchHandler) Courses(c echo.Context, q *model.SearchCoursesQuery) (*model.Page[model.CourseSummary], error) {
	return h.services.Search.Courses(c.Request().Context(), q)
}

// Lessons handles GET /api/search/lessons.
func (h *SearchHandler) Lessons(c echo.Context, q *model.SearchLessonsQuery) (*model.Page[model.LessonHit], error) {
	return h.services.Search.Lessons(c.Request().Context(), q)
}

// Global handles GET /api/search and returns the top courses and lessons
// for one query.
func (h *SearchHandler) Global(c echo.Context, q *model.GlobalSearchQuery) (*model.SearchResults, error) {
	return h.services.Search.Global(c.Request().Context(), q)
}

// Suggestions handles GET /api/search/suggestions for search-as-you-type.
func (h *SearchHandler) Suggestions(c echo.Context, q *model.SuggestionsQuery) ([]model.Suggestion, error) {
	return h.services.Search.Suggestions(c.Request().Context(), q)
}

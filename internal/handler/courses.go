package handler

import (
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/labstack/echo/v4"
)

// CourseHandler serves /api/courses: the public catalog and its reviews, plus
// the instructor endpoints that create and edit courses.
type CourseHandler struct {
	Handler
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(s *server.Server, services *service.Services) *CourseHandler {
	return &CourseHandler{Handler: NewHandler(s, services)}
}

// List handles GET /api/courses. Only published courses are listed.
func (h *CourseHandler) List(c echo.Context, q *model.ListCoursesQuery) (*model.Page[model.CourseSummary], error) {
	return h.services.Courses.List(c.Request().Context(), q)
}

// Categories handles GET /api/courses/categories.
func (h *CourseHandler) Categories(c echo.Context, _ *model.EmptyPayload) ([]model.CategoryWithCount, error) {
	return h.services.Courses.Categories(c.Request().Context())
}

// Get handles GET /api/courses/:id and returns the course with its instructor
// and lesson outline.
func (h *CourseHandler) Get(c echo.Context, p *model.IDParam) (*model.CourseDetail, error) {
	return h.services.Courses.Detail(c.Request().Context(), p.UUID())
}

// Create handles POST /api/courses. The caller becomes the instructor and must
// have the instructor or admin role.
func (h *CourseHandler) Create(c echo.Context, p *model.CreateCoursePayload) (*model.Course, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Courses.Create(c.Request().Context(), caller, p)
}

// Update handles PUT /api/courses/:id for the owning instructor or an admin.
func (h *CourseHandler) Update(c echo.Context, p *model.UpdateCoursePayload) (*model.Course, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Courses.Update(c.Request().Context(), caller, p)
}

// Reviews handles GET /api/courses/:id/reviews, newest first.
func (h *CourseHandler) Reviews(c echo.Context, q *model.ListReviewsQuery) (*model.Page[model.ReviewWithUser], error) {
	return h.services.Courses.Reviews(c.Request().Context(), q)
}

// Review handles POST /api/courses/:id/reviews. Only enrolled users may review;
// posting again replaces the caller's previous review.
func (h *CourseHandler) Review(c echo.Context, p *model.CreateReviewPayload) (*model.Review, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Courses.Review(c.Request().Context(), caller, p)
}

package handler

import (
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/labstack/echo/v4"
)

// LessonHandler serves /api/lessons.
type LessonHandler struct {
	Handler
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(s *server.Server, services *service.Services) *LessonHandler {
	return &LessonHandler{Handler: NewHandler(s, services)}
}

// ListByCourse handles GET /api/lessons/course/:courseId and returns the
// outline in position order, without lesson bodies.
func (h *LessonHandler) ListByCourse(c echo.Context, p *model.ListCourseLessonsPayload) ([]model.LessonOutline, error) {
	return h.services.Lessons.ListByCourse(c.Request().Context(), p.CourseUUID())
}

// Get handles GET /api/lessons/:id. The body comes back both as stored
// markdown and rendered to HTML.
func (h *LessonHandler) Get(c echo.Context, p *model.IDParam) (*model.LessonDetail, error) {
	return h.services.Lessons.Get(c.Request().Context(), p.UUID())
}

// Create handles POST /api/lessons.
func (h *LessonHandler) Create(c echo.Context, p *model.CreateLessonPayload) (*model.Lesson, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Lessons.Create(c.Request().Context(), caller, p)
}

// Update handles PUT /api/lessons/:id. Moving a lesson shifts its siblings so
// positions stay contiguous.
func (h *LessonHandler) Update(c echo.Context, p *model.UpdateLessonPayload) (*model.Lesson, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Lessons.Update(c.Request().Context(), caller, p)
}

// Delete handles DELETE /api/lessons/:id.
func (h *LessonHandler) Delete(c echo.Context, p *model.IDParam) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	return h.services.Lessons.Delete(c.Request().Context(), caller, p.UUID())
}

// Complete handles POST /api/lessons/:id/complete. Completing a lesson twice
// returns the current progress without counting it again.
func (h *LessonHandler) Complete(c echo.Context, p *model.CompleteLessonPayload) (*model.CompleteLessonResult, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Lessons.Complete(c.Request().Context(), caller, p)
}

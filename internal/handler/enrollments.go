package handler

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/labstack/echo/v4"
)

// EnrollmentHandler serves /api/enrollments. Every route requires authentication
// and acts on behalf of the caller unless the caller is an admin.
type EnrollmentHandler struct {
	Handler
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(s *server.Server, services *service.Services) *EnrollmentHandler {
	return &EnrollmentHandler{Handler: NewHandler(s, services)}
}

// Enroll is idempotent: 201 for a new enrollment, 200 with the existing one.
func (h *EnrollmentHandler) Enroll(c echo.Context, p *model.EnrollPayload) (any, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	res, err := h.services.Enrollments.Enroll(c.Request().Context(), caller, p)
	if err != nil {
		return nil, err
	}
	if res.Created {
		return withStatus(http.StatusCreated, res.Enrollment), nil
	}
	return res.Enrollment, nil
}

// ListByUser handles GET /api/enrollments/user/:userId.
func (h *EnrollmentHandler) ListByUser(c echo.Context, p *model.ListUserEnrollmentsPayload) ([]model.EnrollmentWithCourse, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Enrollments.ListByUser(c.Request().Context(), caller, p.UserUUID())
}

// Get handles GET /api/enrollments/:id.
func (h *EnrollmentHandler) Get(c echo.Context, p *model.IDParam) (*model.Enrollment, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Enrollments.Get(c.Request().Context(), caller, p.UUID())
}

// UpdateStatus handles PUT /api/enrollments/:id.
func (h *EnrollmentHandler) UpdateStatus(c echo.Context, p *model.UpdateEnrollmentPayload) (*model.Enrollment, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Enrollments.UpdateStatus(c.Request().Context(), caller, p)
}

// Delete handles DELETE /api/enrollments/:id (unenroll). Progress rows go with it.
func (h *EnrollmentHandler) Delete(c echo.Context, p *model.IDParam) error {
	caller, err := h.caller(c)
	if err != nil {
		return err
	}
	return h.services.Enrollments.Delete(c.Request().Context(), caller, p.UUID())
}

// Progress handles GET /api/enrollments/:id/progress: the enrollment and the
// completion state of every lesson in the course.
func (h *EnrollmentHandler) Progress(c echo.Context, p *model.IDParam) (*model.EnrollmentProgress, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Enrollments.Progress(c.Request().Context(), caller, p.UUID())
}

package handler

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/labstack/echo/v4"
)

// UserHandler serves /api/users. Everything under /me acts on the authenticated
// caller; GET /:id is the public profile.
type UserHandler struct {
	Handler
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(s *server.Server, services *service.Services) *UserHandler {
	return &UserHandler{Handler: NewHandler(s, services)}
}

// Create registers the caller's profile: 201 when created, 200 with the
// existing profile otherwise.
func (h *UserHandler) Create(c echo.Context, p *model.CreateUserPayload) (any, error) {
	user, created, err := h.services.Users.Create(c.Request().Context(), middleware.GetUserID(c), p)
	if err != nil {
		return nil, err
	}
	if created {
		return withStatus(http.StatusCreated, user), nil
	}
	return user, nil
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c echo.Context, _ *model.EmptyPayload) (*model.User, error) {
	return h.caller(c)
}

// UpdateMe handles PUT /api/users/me.
func (h *UserHandler) UpdateMe(c echo.Context, p *model.UpdateUserPayload) (*model.User, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Users.Update(c.Request().Context(), caller, p)
}

// Get handles GET /api/users/:id. Email and role are not exposed.
func (h *UserHandler) Get(c echo.Context, p *model.IDParam) (*model.PublicUser, error) {
	return h.services.Users.Public(c.Request().Context(), p.UUID())
}

// Enrollments handles GET /api/users/me/enrollments.
func (h *UserHandler) Enrollments(c echo.Context, _ *model.EmptyPayload) ([]model.EnrollmentWithCourse, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Users.Enrollments(c.Request().Context(), caller)
}

// Certificates handles GET /api/users/me/certificates.
func (h *UserHandler) Certificates(c echo.Context, _ *model.EmptyPayload) ([]model.CertificateWithCourse, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Users.Certificates(c.Request().Context(), caller)
}

// Stats handles GET /api/users/me/stats.
func (h *UserHandler) Stats(c echo.Context, _ *model.EmptyPayload) (*model.UserStats, error) {
	caller, err := h.caller(c)
	if err != nil {
		return nil, err
	}
	return h.services.Users.Stats(c.Request().Context(), caller)
}

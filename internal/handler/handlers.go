// Package handler is the HTTP layer of the Echo router: it binds and
// validates requests, calls the service layer and writes the response.
//
// Health and OpenAPI also expose net/http forms, shared with the chi router.
package handler

import (
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
)

// Handlers groups every endpoint group so the router takes one value.
type Handlers struct {
	Health      *HealthHandler
	OpenAPI     *OpenAPIHandler
	Users       *UserHandler
	Courses     *CourseHandler
	Lessons     *LessonHandler
	Enrollments *EnrollmentHandler
	Search      *SearchHandler
}

// NewHandlers builds every endpoint group around the same server and services.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(s, services),
		OpenAPI:     NewOpenAPIHandler(s, services),
		Users:       NewUserHandler(s, services),
		Courses:     NewCourseHandler(s, services),
		Lessons:     NewLessonHandler(s, services),
		Enrollments: NewEnrollmentHandler(s, services),
		Search:      NewSearchHandler(s, services),
	}
}

// Package httpapi serves the API on chi with plain net/http handlers. It
// shares the service layer, error mapping and auth provider with the Echo
// router, so both expose the same routes and responses.
package httpapi

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
)

// API holds the chi handlers.
type API struct {
	server   *server.Server
	services *service.Services
}

// NewAPI constructs the chi handlers over the same services the Echo handlers use.
func NewAPI(s *server.Server, services *service.Services) *API {
	return &API{server: s, services: services}
}

// caller resolves the authenticated subject to its profile.
func (a *API) caller(r *http.Request) (*model.User, error) {
	subject, _ := middleware.SubjectFromContext(r.Context())
	return a.services.Users.Caller(r.Context(), subject)
}

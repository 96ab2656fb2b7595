package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// StaticDir holds openapi.html and openapi.json, relative to the working
// directory of the process.
const StaticDir = "static"

// OpenAPIHandler serves the API docs UI. The page loads openapi.json from
// /static.
type OpenAPIHandler struct {
	Handler
	dir string
}

// NewOpenAPIHandler serves the docs from StaticDir.
func NewOpenAPIHandler(s *server.Server, services *service.Services) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s, services),
		dir:     StaticDir,
	}
}

func (h *OpenAPIHandler) page() ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(h.dir, "openapi.html"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read OpenAPI UI template")
	}
	return b, nil
}

// ServeOpenAPIUI serves openapi.html uncached so doc edits show up at once.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	page, err := h.page()
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// ServeHTTP is the net/http form of ServeOpenAPIUI.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")

	page, err := h.page()
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

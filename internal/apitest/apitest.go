// Package apitest builds an API environment over the in-memory store for
// router tests: header auth, no rate limit, no dependency checks.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/repository/memstore"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Env is a running API over an in-memory store. Now is the fixed clock shared by
// the store and the services, so tests can compute expected timestamps.
type Env struct {
	Server   *server.Server
	Store    *memstore.Store
	Services *service.Services
	Now      time.Time
}

// New builds a server with the given router variant ("echo" or "chi"), the
// header auth provider and no external dependencies. Nothing listens; tests
// drive Server.Router through httptest.
func New(t *testing.T, router string) *Env {
	t.Helper()

	obs := config.DefaultObservabilityConfig()
	obs.Environment = "local"
	obs.HealthChecks.Checks = nil

	cfg := &config.Config{
		Primary: config.Primary{Env: "local"},
		Server: config.ServerConfig{
			Port:               "0",
			Router:             router,
			CORSAllowedOrigins: []string{"http://localhost:5173"},
		},
		Auth:          config.AuthConfig{Provider: config.AuthProviderHeader},
		Jobs:          config.JobsConfig{Concurrency: 1, ReconcileSchedule: "@daily"},
		Observability: obs,
	}

	logger := zerolog.Nop()
	env := &Env{
		Server: &server.Server{Config: cfg, Logger: &logger},
		Store:  memstore.New(),
		Now:    time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}
	env.Store.Now = func() time.Time { return env.Now }
	env.Services = service.New(env.Store, nil, func() time.Time { return env.Now })

	return env
}

// Do sends a request as subject (empty for anonymous). body is encoded as
// JSON unless it is nil.
func Do(t *testing.T, h http.Handler, method, path, subject string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set(middleware.UserIDHeader, subject)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the response body into T.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// Object is a decoded JSON object.
type Object = map[string]any

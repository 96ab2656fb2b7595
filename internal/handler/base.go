package handler

import (
	"time"

	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/server"
	"github.com/deppfellow/learnhub/internal/service"
	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application dependencies.
//
// It is embedded by the concrete endpoint groups (CourseHandler, UserHandler, ...)
// so they can reach the server (config, logger) and the service layer.
type Handler struct {
	server   *server.Server
	services *service.Services
}

// NewHandler constructs a base Handler.
//
// It returns the struct by value: Handler only holds two pointers, so each
// endpoint group embeds its own copy and still shares the same Server and Services.
func NewHandler(s *server.Server, services *service.Services) Handler {
	return Handler{server: s, services: services}
}

// caller resolves the authenticated subject to its profile.
func (h Handler) caller(c echo.Context) (*model.User, error) {
	return h.services.Users.Caller(c.Request().Context(), middleware.GetUserID(c))
}

// Payload is a request type whose pointer binds and validates.
//
// Routes name the struct type (Handle[model.IDParam]) and Handle allocates a
// fresh *T per request, so no request state is shared between calls.
type Payload[T any] interface {
	*T
	validation.Validatable
}

// HandlerFunc represents a typed endpoint function that:
//
// - receives a bound and validated request payload (Req)
// - returns a response (Res) or an error
//
// Errors are returned as is; GlobalErrorHandler turns them into JSON.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint without a response body.
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// ResponseHandler defines how a successful handler result is written to the
// HTTP response, and how the response type is named in logs and traces.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
}

// statusResponse lets an endpoint pick the status per request, for
// operations that either create (201) or return the existing row (200).
type statusResponse struct {
	status int
	body   any
}

func withStatus(status int, body any) statusResponse {
	return statusResponse{status: status, body: body}
}

// JSONResponseHandler writes JSON responses with a given status code.
//
// An endpoint may override the status for a single request by returning the
// result of withStatus, which is how idempotent creates answer 200 or 201.
type JSONResponseHandler struct {
	status int
}

// Handle writes result as the JSON body.
func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	if sr, ok := result.(statusResponse); ok {
		return c.JSON(sr.status, sr.body)
	}
	return c.JSON(h.status, result)
}

// GetOperation names the response type in logs and New Relic attributes.
func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// NoContentResponseHandler handles no-content responses.
// It writes responses with no body (typically 204).
type NoContentResponseHandler struct {
	status int
}

// Handle writes the status without a body; the result is ignored.
func (h NoContentResponseHandler) Handle(c echo.Context, _ any) error {
	return c.NoContent(h.status)
}

// GetOperation names the response type in logs and New Relic attributes.
func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

// handleRequest is the shared execution pipeline for all typed endpoints.
//
// It centralizes:
//
// - request binding + validation
// - structured logging (with request context)
// - New Relic attributes and error reporting
// - timing (validation duration, handler duration, total duration)
// - response writing (json / no-content)
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	// txn is nil when New Relic is disabled; every use below is guarded.
	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Logger()

	// Bind path params, query string and JSON body into req, then run its
	// Validate method. Failures are already 400 HTTPErrors.
	if err := validation.BindAndValidate(c, req); err != nil {
		logger.Warn().
			Err(err).
			Dur("validation_duration", time.Since(start)).
			Msg("request validation failed")

		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
		}
		return err
	}
	validationDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	// Logged at debug only: GlobalErrorHandler logs the error again with the
	// final status, at error level for 5xx.
	if err != nil {
		logger.Debug().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Msg("handler returned an error")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed endpoint with binding, validation, logging and tracing.
//
// It returns an echo.HandlerFunc so it can be registered directly on routes:
//
//	courses.POST("", handler.Handle[model.CreateCoursePayload](h.Courses.Create, http.StatusCreated))
func Handle[T any, Req Payload[T], Res any](handler HandlerFunc[Req, Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, Req(new(T)), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleNoContent is Handle for endpoints that write no body, typically with
// http.StatusNoContent.
func HandleNoContent[T any, Req Payload[T]](handler HandlerFuncNoContent[Req], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, Req(new(T)), func(c echo.Context, req Req) (any, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	}
}

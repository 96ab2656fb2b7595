package errs

import (
	"net/http"
)

// newHTTPError fills Code from the status text ("Not Found" -> "NOT_FOUND").
func newHTTPError(status int, message string, override bool) *HTTPError {
	return &HTTPError{
		ErrorMessage: message,
		Code:         MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message:      message,
		Status:       status,
		Override:     override,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
//
// override lets the error handler decide whether the message may be shown
// as-is or replaced with a generic one.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, override)
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, override)
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code replaces the default "BAD_REQUEST" when non-nil; errors carries
// field-level validation failures.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	e := newHTTPError(http.StatusBadRequest, message, override)
	if code != nil {
		e.Code = *code
	}
	e.Errors = errors
	e.Action = action
	return e
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	e := newHTTPError(http.StatusNotFound, message, override)
	if code != nil {
		e.Code = *code
	}
	return e
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError() *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, "Too many requests, slow down", false)
}

// NewInternalServerError creates a 500 with the generic status text.
// The real cause is logged, never sent to the client.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false)
}

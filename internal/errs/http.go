package errs

import "strings"

// FieldError represents a field-level validation error.
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRedirect tells the client it should redirect somewhere.
	// Value holds the URL or route.
	ActionTypeRedirect ActionType = "redirect"
)

// Action describes an optional "what the client should do next" instruction.
type Action struct {
	// Type is the kind of action (e.g. "redirect").
	Type ActionType `json:"type"`

	// Message is human-readable guidance for the client/UI.
	Message string `json:"message"`

	// Value is the payload for the action (e.g. redirect URL).
	Value string `json:"value"`
}

// HTTPError is the main custom error type for API responses.
//
// It implements the error interface via Error() and is serialized directly to
// JSON by both routers.
type HTTPError struct {
	// ErrorMessage repeats Message under the "error" key, so clients that only
	// read {"error": msg} keep working. Body fills it in.
	ErrorMessage string `json:"error"`

	// Code is the machine-friendly error code (e.g. "BAD_REQUEST",
	// "ENROLLMENT_ALREADY_EXISTS").
	Code string `json:"code"`

	// Message is the human-friendly message.
	Message string `json:"message"`

	// Status is the HTTP status code.
	Status int `json:"status"`

	// Override tells the frontend whether it may replace Message with its own
	// wording. Messages naming a specific field or resource set it.
	Override bool `json:"override"`

	// Errors holds field-level validation errors, typically for form inputs.
	Errors []FieldError `json:"errors,omitempty"`

	// Action is an optional client instruction (redirect, etc.).
	Action *Action `json:"action,omitempty"`
}

// Error makes *HTTPError satisfy the built-in error interface.
//
// It returns the Message, so printing or logging the error shows what the client sees.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError of any code or status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		ErrorMessage: message,
		Code:         e.Code,
		Message:      message,
		Status:       e.Status,
		Override:     e.Override,
		Errors:       e.Errors,
		Action:       e.Action,
	}
}

// Body returns the value written to the client, with ErrorMessage filled in.
func (e *HTTPError) Body() HTTPError {
	body := *e
	body.ErrorMessage = e.Message
	return body
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

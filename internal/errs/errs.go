// Package errs holds the API error types.
//
// Every failure that reaches a client is an *HTTPError: a stable code, a
// message, optional FieldErrors for rejected input, and the HTTP status.
// Constructors in types.go cover the statuses the API returns.
package errs

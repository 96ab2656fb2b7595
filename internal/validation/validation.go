// Package validation binds and validates request payloads.
//
// Payloads declare their rules as validator struct tags and implement
// Validate. Failures come back as a BadRequest *errs.HTTPError whose Errors
// list names each rejected field in its JSON form.
package validation

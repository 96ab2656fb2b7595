package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/validation"
)

// decode reads an optional JSON body into v and validates it. An empty
// body leaves v as is.
func decode(r *http.Request, v validation.Validatable) error {
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return errs.NewBadRequestError("Invalid request body", false, nil, nil, nil)
		}
	}
	return validation.Validate(v)
}

// queryReader collects conversion errors so one response lists every bad
// parameter, like a failed bind would.
type queryReader struct {
	values url.Values
	errors []errs.FieldError
}

// newQueryReader reads from the request URL query.
func newQueryReader(r *http.Request) *queryReader {
	return &queryReader{values: r.URL.Query()}
}

func (q *queryReader) string(key string) string {
	return q.values.Get(key)
}

// int parses key as a whole number. A missing key yields 0.
func (q *queryReader) int(key string) int {
	raw := q.values.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errors = append(q.errors, errs.FieldError{Field: key, Error: "must be a whole number"})
	}
	return n
}

// float parses key as a decimal number. A missing key yields 0.
func (q *queryReader) float(key string) float64 {
	raw := q.values.Get(key)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.errors = append(q.errors, errs.FieldError{Field: key, Error: "must be a number"})
	}
	return f
}

// page reads the shared page and limit parameters.
func (q *queryReader) page() model.PageQuery {
	return model.PageQuery{Page: q.int("page"), Limit: q.int("limit")}
}

// validate reports conversion errors first, then runs the payload rules.
func (q *queryReader) validate(v validation.Validatable) error {
	if len(q.errors) > 0 {
		return errs.NewBadRequestError("Validation failed", true, nil, q.errors, nil)
	}
	return validation.Validate(v)
}

// writeJSON and writeError share the encoding used by the Echo stack.
func writeJSON(w http.ResponseWriter, status int, v any) {
	middleware.WriteJSON(w, status, v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteError(w, r, err)
}

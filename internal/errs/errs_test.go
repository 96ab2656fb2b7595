package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError_JSONCarriesErrorKey(t *testing.T) {
	e := NewNotFoundError("Course not found", true, nil)

	raw, err := json.Marshal(e.Body())
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Course not found", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.EqualValues(t, http.StatusNotFound, body["status"])
	assert.NotContains(t, body, "errors")
}

func TestHTTPError_IsMatchesAnyHTTPError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewForbiddenError("no", false))
	assert.True(t, errors.Is(wrapped, &HTTPError{}))
	assert.False(t, errors.Is(errors.New("plain"), &HTTPError{}))
}

func TestHTTPError_WithMessageCopies(t *testing.T) {
	base := NewBadRequestError("bad", false, nil, []FieldError{{Field: "a", Error: "b"}}, nil)
	other := base.WithMessage("worse")

	assert.Equal(t, "bad", base.Message)
	assert.Equal(t, "worse", other.Message)
	assert.Equal(t, "worse", other.ErrorMessage)
	assert.Equal(t, base.Errors, other.Errors)
}

func TestNewBadRequestError_CustomCode(t *testing.T) {
	code := "COURSE_INVALID"
	assert.Equal(t, code, NewBadRequestError("x", false, &code, nil, nil).Code)
	assert.Equal(t, "BAD_REQUEST", NewBadRequestError("x", false, nil, nil, nil).Code)
}

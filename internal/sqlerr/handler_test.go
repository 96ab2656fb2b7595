package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/learnhub/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asHTTP(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleError_NotFoundWithTableHint(t *testing.T) {
	err := HandleError(fmt.Errorf("table:courses: %w", pgx.ErrNoRows))

	httpErr := asHTTP(t, err)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Course not found", httpErr.Message)
}

func TestHandleError_NotFoundIrregularTables(t *testing.T) {
	assert.Equal(t, "Category not found", asHTTP(t, HandleError(fmt.Errorf("table:categories: %w", pgx.ErrNoRows))).Message)
	assert.Equal(t, "Lesson Progress not found", asHTTP(t, HandleError(fmt.Errorf("table:lesson_progress: %w", pgx.ErrNoRows))).Message)
}

func TestHandleError_NotFoundWithoutHint(t *testing.T) {
	httpErr := asHTTP(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_UniqueViolation(t *testing.T) {
	err := HandleError(fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "enrollments",
		ConstraintName: "unique_enrollments_course",
	}))

	httpErr := asHTTP(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "ENROLLMENT_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "An Enrollment with this Course already exists", httpErr.Message)
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	httpErr := asHTTP(t, HandleError(&pgconn.PgError{
		Code:       "23503",
		TableName:  "lessons",
		ColumnName: "course_id",
	}))
	assert.Equal(t, "LESSON_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced Course does not exist", httpErr.Message)
}

func TestHandleError_NotNullViolationHasFieldError(t *testing.T) {
	httpErr := asHTTP(t, HandleError(&pgconn.PgError{
		Code:       "23502",
		TableName:  "courses",
		ColumnName: "title",
	}))
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "title", httpErr.Errors[0].Field)
}

func TestHandleError_UnknownIsOpaque(t *testing.T) {
	httpErr := asHTTP(t, HandleError(errors.New("dial tcp: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, "Internal Server Error", httpErr.Message)
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	in := errs.NewForbiddenError("nope", true)
	assert.Same(t, in, HandleError(in))
}

func TestErrCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, ErrCode(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"})))
	assert.Equal(t, CheckViolation, ErrCode(ConvertPgError(&pgconn.PgError{Code: "23514"})))
	assert.Equal(t, Other, ErrCode(errors.New("x")))
}

func TestConvertPgError_Unwraps(t *testing.T) {
	src := &pgconn.PgError{Code: "40P01", Severity: "ERROR"}
	converted := ConvertPgError(src)
	assert.Equal(t, DeadlockDetected, converted.Code)
	assert.Equal(t, SeverityError, converted.Severity)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(converted, &pgErr))
}

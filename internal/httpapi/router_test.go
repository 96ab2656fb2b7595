package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/deppfellow/learnhub/internal/apitest"
	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/httpapi"
	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object = apitest.Object

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	env := apitest.New(t, config.RouterChi)
	return httpapi.NewRouter(env.Server, env.Services)
}

// seedCourse creates an instructor with a published course of n lessons
// and returns the course and lesson ids.
func seedCourse(t *testing.T, h http.Handler, n int) (string, []string) {
	t.Helper()

	rec := apitest.Do(t, h, http.MethodPost, "/api/users", "inst", object{"email": "i@example.com", "name": "Inst", "role": "instructor"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = apitest.Do(t, h, http.MethodPost, "/api/courses", "inst", object{
		"title":       "Intro to SQL",
		"description": "Tables and joins",
		"isPublished": true,
		"price":       19.99,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	courseID := apitest.Decode[object](t, rec)["id"].(string)

	lessons := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rec = apitest.Do(t, h, http.MethodPost, "/api/lessons", "inst", object{"courseId": courseID, "title": "Lesson", "content": "body"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		lessons = append(lessons, apitest.Decode[object](t, rec)["id"].(string))
	}
	return courseID, lessons
}

func TestStatus(t *testing.T) {
	h := newRouter(t)

	rec := apitest.Do(t, h, http.MethodGet, "/status", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", apitest.Decode[object](t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestProtectedRouteWithoutSubject(t *testing.T) {
	h := newRouter(t)

	rec := apitest.Do(t, h, http.MethodPost, "/api/enrollments", "", object{"courseId": "6f1c2a8e-3b7d-4c1e-9a55-0d2f3e4b5c6d"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", apitest.Decode[object](t, rec)["error"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newRouter(t)

	rec := apitest.Do(t, h, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", apitest.Decode[object](t, rec)["error"])

	rec = apitest.Do(t, h, http.MethodPatch, "/api/search/courses", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestQueryConversionErrors(t *testing.T) {
	h := newRouter(t)

	rec := apitest.Do(t, h, http.MethodGet, "/api/courses?page=two&limit=x", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := apitest.Decode[object](t, rec)
	assert.Len(t, body["errors"], 2)
}

func TestInvalidJSONBody(t *testing.T) {
	h := newRouter(t)
	apitest.Do(t, h, http.MethodPost, "/api/users", "inst", object{"email": "i@example.com", "name": "Inst", "role": "instructor"})

	req := httptest.NewRequest(http.MethodPost, "/api/courses", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.UserIDHeader, "inst")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", apitest.Decode[object](t, rec)["error"])
}

func preflight(t *testing.T, h http.Handler, origin, headers string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	if headers != "" {
		req.Header.Set("Access-Control-Request-Headers", headers)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(t)

	rec := preflight(t, h, "http://localhost:5173", "content-type, x-user-id")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPost, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-user-id")
	assert.Equal(t, strconv.Itoa(middleware.CORSMaxAge), rec.Header().Get("Access-Control-Max-Age"))

	rec = preflight(t, h, "http://evil.example", "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight(t, h, "http://localhost:5173", "x-debug-token")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSExposesRequestID(t *testing.T) {
	h := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.EqualFold(middleware.RequestIDHeader, rec.Header().Get("Access-Control-Expose-Headers")))
}

func TestLessonOrderingAndDelete(t *testing.T) {
	h := newRouter(t)
	courseID, lessons := seedCourse(t, h, 3)

	rec := apitest.Do(t, h, http.MethodPut, "/api/lessons/"+lessons[2], "inst", object{"position": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = apitest.Do(t, h, http.MethodDelete, "/api/lessons/"+lessons[0], "inst", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = apitest.Do(t, h, http.MethodGet, "/api/lessons/course/"+courseID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	outline := apitest.Decode[[]object](t, rec)
	require.Len(t, outline, 2)
	assert.Equal(t, lessons[2], outline[0]["id"])
	assert.EqualValues(t, 1, outline[0]["position"])
	assert.Equal(t, lessons[1], outline[1]["id"])
	assert.EqualValues(t, 2, outline[1]["position"])
}

func TestEnrollmentLifecycle(t *testing.T) {
	h := newRouter(t)
	courseID, lessons := seedCourse(t, h, 2)

	rec := apitest.Do(t, h, http.MethodPost, "/api/users", "stud", object{"email": "s@example.com", "name": "Stud"})
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := apitest.Decode[object](t, rec)["id"].(string)

	rec = apitest.Do(t, h, http.MethodPost, "/api/enrollments", "stud", object{"courseId": courseID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	enrollmentID := apitest.Decode[object](t, rec)["id"].(string)

	rec = apitest.Do(t, h, http.MethodPost, "/api/lessons/"+lessons[0]+"/complete", "stud", object{"timeSpent": 60})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = apitest.Do(t, h, http.MethodGet, "/api/enrollments/user/"+userID, "stud", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := apitest.Decode[[]object](t, rec)
	require.Len(t, list, 1)
	assert.EqualValues(t, 50, list[0]["progress"])

	rec = apitest.Do(t, h, http.MethodPut, "/api/enrollments/"+enrollmentID, "stud", object{"status": "dropped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "dropped", apitest.Decode[object](t, rec)["status"])

	rec = apitest.Do(t, h, http.MethodPut, "/api/enrollments/"+enrollmentID, "stud", object{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = apitest.Do(t, h, http.MethodDelete, "/api/enrollments/"+enrollmentID, "stud", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = apitest.Do(t, h, http.MethodGet, "/api/courses/"+courseID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, apitest.Decode[object](t, rec)["enrollmentCount"])

	rec = apitest.Do(t, h, http.MethodGet, "/api/enrollments/"+enrollmentID, "stud", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchCourses(t *testing.T) {
	h := newRouter(t)
	seedCourse(t, h, 1)

	rec := apitest.Do(t, h, http.MethodGet, "/api/search/courses?q=sql&free=false&minRating=0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := apitest.Decode[object](t, rec)
	assert.EqualValues(t, 1, page["total"])

	rec = apitest.Do(t, h, http.MethodGet, "/api/search/courses?q=sql&free=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, apitest.Decode[object](t, rec)["total"])

	rec = apitest.Do(t, h, http.MethodGet, "/api/search?q=sql", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := apitest.Decode[object](t, rec)
	assert.Len(t, results["courses"], 1)
	assert.Empty(t, results["lessons"])

	rec = apitest.Do(t, h, http.MethodGet, "/api/search/courses?sort=cheapest", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package router_test

import (
	"net/http"
	"testing"

	"github.com/deppfellow/learnhub/internal/apitest"
	"github.com/deppfellow/learnhub/internal/config"
	"github.com/deppfellow/learnhub/internal/handler"
	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/router"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object = apitest.Object

func newRouter(t *testing.T) (*echo.Echo, *apitest.Env) {
	t.Helper()
	env := apitest.New(t, config.RouterEcho)
	return router.NewRouter(env.Server, handler.NewHandlers(env.Server, env.Services)), env
}

func TestStatus_HealthyWithoutChecks(t *testing.T) {
	e, _ := newRouter(t)

	rec := apitest.Do(t, e, http.MethodGet, "/status", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := apitest.Decode[object](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "local", body["environment"])
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestAuth_MissingSubjectIsUnauthorized(t *testing.T) {
	e, _ := newRouter(t)

	rec := apitest.Do(t, e, http.MethodGet, "/api/users/me", "", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := apitest.Decode[object](t, rec)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestUsers_CreateProfileIsIdempotent(t *testing.T) {
	e, _ := newRouter(t)
	payload := object{"email": "ada@example.com", "name": "Ada"}

	first := apitest.Do(t, e, http.MethodPost, "/api/users", "user_ada", payload)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := apitest.Do(t, e, http.MethodPost, "/api/users", "user_ada", payload)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, apitest.Decode[object](t, first)["id"], apitest.Decode[object](t, second)["id"])
	assert.Equal(t, "student", apitest.Decode[object](t, second)["role"])
}

func TestUsers_MeWithoutProfile(t *testing.T) {
	e, _ := newRouter(t)

	rec := apitest.Do(t, e, http.MethodGet, "/api/users/me", "user_ghost", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PROFILE_NOT_FOUND", apitest.Decode[object](t, rec)["code"])
}

func TestCourses_ValidationErrorsListFields(t *testing.T) {
	e, _ := newRouter(t)
	apitest.Do(t, e, http.MethodPost, "/api/users", "inst", object{"email": "i@example.com", "name": "Inst", "role": "instructor"})

	rec := apitest.Do(t, e, http.MethodPost, "/api/courses", "inst", object{"title": "Go", "price": -1})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := apitest.Decode[object](t, rec)
	assert.Equal(t, "Validation failed", body["error"])
	assert.NotEmpty(t, body["errors"])
}

func TestCourses_StudentCannotCreate(t *testing.T) {
	e, _ := newRouter(t)
	apitest.Do(t, e, http.MethodPost, "/api/users", "stud", object{"email": "s@example.com", "name": "Stud"})

	rec := apitest.Do(t, e, http.MethodPost, "/api/courses", "stud", object{"title": "Go Basics", "description": "Learn Go"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCourses_BadAndUnknownIDs(t *testing.T) {
	e, _ := newRouter(t)

	bad := apitest.Do(t, e, http.MethodGet, "/api/courses/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	missing := apitest.Do(t, e, http.MethodGet, "/api/courses/6f1c2a8e-3b7d-4c1e-9a55-0d2f3e4b5c6d", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUnknownRoute(t *testing.T) {
	e, _ := newRouter(t)

	rec := apitest.Do(t, e, http.MethodGet, "/api/nope", "", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", apitest.Decode[object](t, rec)["error"])
}

func TestLearningFlow(t *testing.T) {
	e, _ := newRouter(t)

	rec := apitest.Do(t, e, http.MethodPost, "/api/users", "inst", object{"email": "i@example.com", "name": "Inst", "role": "instructor"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = apitest.Do(t, e, http.MethodPost, "/api/courses", "inst", object{
		"title":       "Go Basics",
		"description": "Learn Go",
		"isPublished": true,
		"tags":        []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	course := apitest.Decode[object](t, rec)
	courseID := course["id"].(string)
	assert.Equal(t, "go-basics", course["slug"])

	var lessonIDs []string
	for _, title := range []string{"Intro", "Types"} {
		rec = apitest.Do(t, e, http.MethodPost, "/api/lessons", "inst", object{
			"courseId": courseID,
			"title":    title,
			"content":  "# " + title,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		lessonIDs = append(lessonIDs, apitest.Decode[object](t, rec)["id"].(string))
	}

	rec = apitest.Do(t, e, http.MethodGet, "/api/lessons/"+lessonIDs[0], "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, apitest.Decode[object](t, rec)["contentHtml"], "Intro</h1>")

	rec = apitest.Do(t, e, http.MethodPost, "/api/users", "stud", object{"email": "s@example.com", "name": "Stud"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = apitest.Do(t, e, http.MethodPost, "/api/enrollments", "stud", object{"courseId": courseID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	enrollmentID := apitest.Decode[object](t, rec)["id"].(string)

	rec = apitest.Do(t, e, http.MethodPost, "/api/enrollments", "stud", object{"courseId": courseID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = apitest.Do(t, e, http.MethodPost, "/api/lessons/"+lessonIDs[0]+"/complete", "stud", object{"timeSpent": 120})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := apitest.Decode[object](t, rec)
	assert.Equal(t, false, result["courseCompleted"])
	assert.EqualValues(t, 50, result["enrollment"].(object)["progress"])

	rec = apitest.Do(t, e, http.MethodPost, "/api/lessons/"+lessonIDs[1]+"/complete", "stud", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result = apitest.Decode[object](t, rec)
	assert.Equal(t, true, result["courseCompleted"])
	assert.NotNil(t, result["certificate"])

	rec = apitest.Do(t, e, http.MethodPost, "/api/lessons/"+lessonIDs[1]+"/complete", "stud", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, apitest.Decode[object](t, rec)["alreadyCompleted"])

	rec = apitest.Do(t, e, http.MethodGet, "/api/enrollments/"+enrollmentID+"/progress", "stud", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := apitest.Decode[object](t, rec)
	assert.EqualValues(t, 100, progress["progress"])
	assert.Len(t, progress["lessons"], 2)

	rec = apitest.Do(t, e, http.MethodGet, "/api/users/me/certificates", "stud", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, apitest.Decode[[]object](t, rec), 1)

	rec = apitest.Do(t, e, http.MethodGet, "/api/users/me/stats", "stud", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := apitest.Decode[object](t, rec)
	assert.EqualValues(t, 1, stats["completedCourses"])
	assert.EqualValues(t, 2, stats["lessonsCompleted"])
	assert.EqualValues(t, 1, stats["currentStreak"])

	// Someone else's enrollment is hidden.
	rec = apitest.Do(t, e, http.MethodGet, "/api/enrollments/"+enrollmentID, "inst", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = apitest.Do(t, e, http.MethodPost, "/api/courses/"+courseID+"/reviews", "stud", object{"rating": 4, "comment": "Good"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = apitest.Do(t, e, http.MethodGet, "/api/courses/"+courseID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := apitest.Decode[object](t, rec)
	assert.EqualValues(t, 1, detail["enrollmentCount"])
	assert.EqualValues(t, 4, detail["rating"])
	assert.Len(t, detail["lessons"], 2)

	rec = apitest.Do(t, e, http.MethodGet, "/api/search/suggestions?q=go", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	suggestions := apitest.Decode[[]object](t, rec)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Go Basics", suggestions[0]["text"])
}

func TestSearch_ShortSuggestionQuery(t *testing.T) {
	e, _ := newRouter(t)

	rec := apitest.Do(t, e, http.MethodGet, "/api/search/suggestions?q=g", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, apitest.Decode[[]object](t, rec))
}

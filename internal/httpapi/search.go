package httpapi

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/model"
)

// searchCourses handles GET /api/search/courses.
func (a *API) searchCourses(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	p := model.SearchCoursesQuery{
		PageQuery: q.page(),
		Q:         q.string("q"),
		Category:  q.string("category"),
		Level:     q.string("level"),
		MinRating: q.float("minRating"),
		Free:      q.string("free"),
		Sort:      q.string("sort"),
	}
	if err := q.validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.services.Search.Courses(r.Context(), &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// searchLessons handles GET /api/search/lessons.
func (a *API) searchLessons(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	p := model.SearchLessonsQuery{
		PageQuery: q.page(),
		Q:         q.string("q"),
		CourseID:  q.string("courseId"),
	}
	if err := q.validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.services.Search.Lessons(r.Context(), &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// searchAll handles GET /api/search.
func (a *API) searchAll(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	p := model.GlobalSearchQuery{Q: q.string("q"), Limit: q.int("limit")}
	if err := q.validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	results, err := a.services.Search.Global(r.Context(), &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// suggestions handles GET /api/search/suggestions.
func (a *API) suggestions(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	p := model.SuggestionsQuery{Q: q.string("q"), Limit: q.int("limit")}
	if err := q.validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	suggestions, err := a.services.Search.Suggestions(r.Context(), &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

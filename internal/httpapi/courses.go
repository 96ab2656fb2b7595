package httpapi

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/go-chi/chi/v5"
)

// listCourses handles GET /api/courses.
func (a *API) listCourses(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	p := model.ListCoursesQuery{
		PageQuery:    q.page(),
		Category:     q.string("category"),
		Level:        q.string("level"),
		InstructorID: q.string("instructorId"),
	}
	if err := q.validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.services.Courses.List(r.Context(), &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// listCategories handles GET /api/courses/categories.
func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.services.Courses.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// getCourse handles GET /api/courses/{id}.
func (a *API) getCourse(w http.ResponseWriter, r *http.Request) {
	p := model.IDParam{ID: chi.URLParam(r, "id")}
	if err := validation.Validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := a.services.Courses.Detail(r.Context(), p.UUID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// createCourse handles POST /api/courses. The caller becomes the instructor.
func (a *API) createCourse(w http.ResponseWriter, r *http.Request) {
	var p model.CreateCoursePayload
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	course, err := a.services.Courses.Create(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// updateCourse handles PUT /api/courses/{id}.
func (a *API) updateCourse(w http.ResponseWriter, r *http.Request) {
	p := model.UpdateCoursePayload{IDParam: model.IDParam{ID: chi.URLParam(r, "id")}}
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	course, err := a.services.Courses.Update(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// listReviews handles GET /api/courses/{id}/reviews.
func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	p := model.ListReviewsQuery{
		IDParam:   model.IDParam{ID: chi.URLParam(r, "id")},
		PageQuery: q.page(),
	}
	if err := q.validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.services.Courses.Reviews(r.Context(), &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// createReview handles POST /api/courses/{id}/reviews. A second review replaces the first.
func (a *API) createReview(w http.ResponseWriter, r *http.Request) {
	p := model.CreateReviewPayload{IDParam: model.IDParam{ID: chi.URLParam(r, "id")}}
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	review, err := a.services.Courses.Review(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

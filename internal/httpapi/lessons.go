package httpapi

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/go-chi/chi/v5"
)

// listCourseLessons handles GET /api/lessons/course/{courseId}.
func (a *API) listCourseLessons(w http.ResponseWriter, r *http.Request) {
	p := model.ListCourseLessonsPayload{CourseID: chi.URLParam(r, "courseId")}
	if err := validation.Validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	lessons, err := a.services.Lessons.ListByCourse(r.Context(), p.CourseUUID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

// getLesson handles GET /api/lessons/{id}.
func (a *API) getLesson(w http.ResponseWriter, r *http.Request) {
	p := model.IDParam{ID: chi.URLParam(r, "id")}
	if err := validation.Validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	lesson, err := a.services.Lessons.Get(r.Context(), p.UUID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

// createLesson handles POST /api/lessons.
func (a *API) createLesson(w http.ResponseWriter, r *http.Request) {
	var p model.CreateLessonPayload
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	lesson, err := a.services.Lessons.Create(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lesson)
}

// updateLesson handles PUT /api/lessons/{id}.
func (a *API) updateLesson(w http.ResponseWriter, r *http.Request) {
	p := model.UpdateLessonPayload{IDParam: model.IDParam{ID: chi.URLParam(r, "id")}}
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	lesson, err := a.services.Lessons.Update(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

// deleteLesson handles DELETE /api/lessons/{id}.
func (a *API) deleteLesson(w http.ResponseWriter, r *http.Request) {
	p := model.IDParam{ID: chi.URLParam(r, "id")}
	if err := validation.Validate(&p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.services.Lessons.Delete(r.Context(), caller, p.UUID()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// completeLesson handles POST /api/lessons/{id}/complete. Completing twice is a no-op.
func (a *API) completeLesson(w http.ResponseWriter, r *http.Request) {
	p := model.CompleteLessonPayload{IDParam: model.IDParam{ID: chi.URLParam(r, "id")}}
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := a.services.Lessons.Complete(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

package httpapi

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/go-chi/chi/v5"
)

// enroll handles POST /api/enrollments.
func (a *API) enroll(w http.ResponseWriter, r *http.Request) {
	var p model.EnrollPayload
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := a.services.Enrollments.Enroll(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res.Enrollment)
}

// listUserEnrollments handles GET /api/enrollments/user/{userId}.
func (a *API) listUserEnrollments(w http.ResponseWriter, r *http.Request) {
	p := model.ListUserEnrollmentsPayload{UserID: chi.URLParam(r, "userId")}
	if err := validation.Validate(&p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	enrollments, err := a.services.Enrollments.ListByUser(r.Context(), caller, p.UserUUID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

// enrollmentID validates the {id} parameter and resolves the caller, the
// first two steps of every /enrollments/{id} handler.
func (a *API) enrollmentID(w http.ResponseWriter, r *http.Request) (*model.User, *model.IDParam, bool) {
	p := &model.IDParam{ID: chi.URLParam(r, "id")}
	if err := validation.Validate(p); err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	return caller, p, true
}

// getEnrollment handles GET /api/enrollments/{id}.
func (a *API) getEnrollment(w http.ResponseWriter, r *http.Request) {
	caller, p, ok := a.enrollmentID(w, r)
	if !ok {
		return
	}

	enrollment, err := a.services.Enrollments.Get(r.Context(), caller, p.UUID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

// updateEnrollment handles PUT /api/enrollments/{id}.
func (a *API) updateEnrollment(w http.ResponseWriter, r *http.Request) {
	p := model.UpdateEnrollmentPayload{IDParam: model.IDParam{ID: chi.URLParam(r, "id")}}
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	enrollment, err := a.services.Enrollments.UpdateStatus(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

// deleteEnrollment handles DELETE /api/enrollments/{id}. Only the owner or an admin may unenroll.
func (a *API) deleteEnrollment(w http.ResponseWriter, r *http.Request) {
	caller, p, ok := a.enrollmentID(w, r)
	if !ok {
		return
	}

	if err := a.services.Enrollments.Delete(r.Context(), caller, p.UUID()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// enrollmentProgress handles GET /api/enrollments/{id}/progress.
func (a *API) enrollmentProgress(w http.ResponseWriter, r *http.Request) {
	caller, p, ok := a.enrollmentID(w, r)
	if !ok {
		return
	}

	progress, err := a.services.Enrollments.Progress(r.Context(), caller, p.UUID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

package httpapi

import (
	"net/http"

	"github.com/deppfellow/learnhub/internal/middleware"
	"github.com/deppfellow/learnhub/internal/model"
	"github.com/deppfellow/learnhub/internal/validation"
	"github.com/go-chi/chi/v5"
)

// createUser handles POST /api/users.
func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var p model.CreateUserPayload
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	subject, _ := middleware.SubjectFromContext(r.Context())
	user, created, err := a.services.Users.Create(r.Context(), subject, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

// getMe handles GET /api/users/me.
func (a *API) getMe(w http.ResponseWriter, r *http.Request) {
	user, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// updateMe handles PUT /api/users/me.
func (a *API) updateMe(w http.ResponseWriter, r *http.Request) {
	var p model.UpdateUserPayload
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.services.Users.Update(r.Context(), caller, &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// getUser handles GET /api/users/{id}.
func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	p := model.IDParam{ID: chi.URLParam(r, "id")}
	if err := validation.Validate(&p); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.services.Users.Public(r.Context(), p.UUID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// myEnrollments handles GET /api/users/me/enrollments.
func (a *API) myEnrollments(w http.ResponseWriter, r *http.Request) {
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	enrollments, err := a.services.Users.Enrollments(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

// myCertificates handles GET /api/users/me/certificates.
func (a *API) myCertificates(w http.ResponseWriter, r *http.Request) {
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	certificates, err := a.services.Users.Certificates(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, certificates)
}

// myStats handles GET /api/users/me/stats.
func (a *API) myStats(w http.ResponseWriter, r *http.Request) {
	caller, err := a.caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := a.services.Users.Stats(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

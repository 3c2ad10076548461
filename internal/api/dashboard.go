package api

import (
	"errors"
	"net/http"

	"claudehub/internal/dashboard"

	"github.com/sirupsen/logrus"
)

func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	session, _ := SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.dashboard.Overview(r.Context(), session.User.ID))
}

func (h *Handler) ProjectsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	session, _ := SessionFromContext(r.Context())

	q := r.URL.Query()
	list := h.dashboard.Projects(r.Context(), session.User.ID, dashboard.ProjectFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
	})
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ChartsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	charts, err := dashboard.ChartData(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Range must be weekly or monthly")
		return
	}
	writeJSON(w, http.StatusOK, charts)
}

func (h *Handler) FormsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	session, _ := SessionFromContext(r.Context())

	var form dashboard.FormSubmission
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.dashboard.SubmitForm(r.Context(), session.User.ID, form)
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidForm) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit form")
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		profile, err := h.dashboard.Profile(r.Context(), session.User)
		if err != nil {
			logrus.Errorf("Failed to load profile of user %s: %v", session.User.ID, err)
			writeError(w, http.StatusInternalServerError, "Failed to load profile")
			return
		}
		writeJSON(w, http.StatusOK, profile)

	case http.MethodPut:
		var update dashboard.ProfileUpdate
		if err := decodeJSON(r, &update); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		profile, err := h.dashboard.UpdateProfile(r.Context(), session.User, update)
		if err != nil {
			logrus.Errorf("Failed to update profile of user %s: %v", session.User.ID, err)
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		writeJSON(w, http.StatusOK, profile)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

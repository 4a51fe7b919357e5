package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// SignUp handles POST /auth/sign-up
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.Auth.SignUp(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// SignIn handles POST /auth/sign-in
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req model.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.Auth.SignIn(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SignOut handles POST /auth/sign-out
// Always succeeds; the local session is dropped even if the remote is down.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.svc.Auth.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Auth.Me(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PUT /me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	user, err := h.svc.Profile.Update(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// MyScores handles GET /me/scores
func (h *Handler) MyScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.Profile.Scores(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

// MyBookings handles GET /me/bookings
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.Events.MyBookings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

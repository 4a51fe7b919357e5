package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// ScoringEvents handles GET /scoring/events
func (h *Handler) ScoringEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Scoring.Events(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// EventScores handles GET /events/{id}/scores
func (h *Handler) EventScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.Scoring.EventScores(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

// SubmitScore handles POST /events/{id}/scores
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req model.ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	score, err := h.svc.Scoring.Submit(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, score)
}

// UpdateScore handles PUT /scores/{id}
func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var req model.ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	score, err := h.svc.Scoring.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

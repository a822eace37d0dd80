package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func (h *Handlers) CreateRating(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Rating  int     `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	rating := domain.Rating{
		ID:        uuid.New(),
		EventID:   eventID,
		UserID:    userIDFrom(r.Context()),
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.CreateRating(r.Context(), rating); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       rating.ID,
		"event_id": rating.EventID,
		"rating":   rating.Rating,
		"comment":  rating.Comment,
	})
}

func (h *Handlers) ListEventRatings(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	ratings, err := h.repo.ListEventRatings(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]map[string]interface{}, len(ratings))
	for i, rt := range ratings {
		items[i] = map[string]interface{}{
			"id":         rt.ID,
			"user_id":    rt.UserID,
			"rating":     rt.Rating,
			"comment":    rt.Comment,
			"created_at": rt.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ratings": items})
}

func (h *Handlers) UpdateRating(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Rating  int     `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateRating(r.Context(), id, req.Rating, req.Comment); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteRating(w http.ResponseWriter, r *http.Request) {
	h.deleteByParam(w, r, h.repo.DeleteRating)
}

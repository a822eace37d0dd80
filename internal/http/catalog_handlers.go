package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

type eventRequest struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Price         int64     `json:"price"`
	StartDate     time.Time `json:"start_date"`
	AvailableSeat int       `json:"available_seat"`
	CategoryID    uuid.UUID `json:"category_id"`
	LocationID    uuid.UUID `json:"location_id"`
}

// validate checks the FREE/PAID pricing rule before anything touches the
// database: free events carry a zero price, paid events a positive one.
func (req *eventRequest) validate() string {
	if req.Name == "" || req.AvailableSeat < 0 {
		return "name and a non-negative seat count are required"
	}
	switch domain.EventType(req.Type) {
	case domain.EventFree:
		if req.Price != 0 {
			return "free events must have a zero price"
		}
	case domain.EventPaid:
		if req.Price <= 0 {
			return "paid events must have a positive price"
		}
	default:
		return "type must be FREE or PAID"
	}
	return ""
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	event := domain.Event{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		Type:          domain.EventType(req.Type),
		Price:         req.Price,
		StartDate:     req.StartDate,
		AvailableSeat: req.AvailableSeat,
		OrganizerID:   userIDFrom(r.Context()),
		CategoryID:    req.CategoryID,
		LocationID:    req.LocationID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.repo.CreateEvent(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, eventResponse(&event))
}

// GetEvent serves from the redis cache when it can; mutations and purchases
// invalidate the cached copy.
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if cached, err := h.cache.GetEvent(r.Context(), id.String()); err == nil && cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	event, err := h.repo.GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	data := writeJSON(w, http.StatusOK, eventResponse(event))
	if err := h.cache.SetEvent(r.Context(), id.String(), data, h.cfg.EventCacheTTL); err != nil {
		h.logger.Error("event cache write failed: ", err)
	}
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	events, total, err := h.repo.ListEvents(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]map[string]interface{}, len(events))
	for i := range events {
		items[i] = eventResponse(&events[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": items,
		"total":  total,
	})
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	event := domain.Event{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Type:          domain.EventType(req.Type),
		Price:         req.Price,
		StartDate:     req.StartDate,
		AvailableSeat: req.AvailableSeat,
		CategoryID:    req.CategoryID,
		LocationID:    req.LocationID,
	}
	if err := h.repo.UpdateEvent(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}
	if err := h.cache.InvalidateEvent(r.Context(), id.String()); err != nil {
		h.logger.Error("event cache invalidation failed: ", err)
	}

	writeJSON(w, http.StatusOK, eventResponse(&event))
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteEvent(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.cache.InvalidateEvent(r.Context(), id.String()); err != nil {
		h.logger.Error("event cache invalidation failed: ", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func eventResponse(e *domain.Event) map[string]interface{} {
	return map[string]interface{}{
		"id":             e.ID,
		"name":           e.Name,
		"description":    e.Description,
		"type":           e.Type,
		"price":          e.Price,
		"start_date":     e.StartDate,
		"available_seat": e.AvailableSeat,
		"organizer_id":   e.OrganizerID,
		"category_id":    e.CategoryID,
		"location_id":    e.LocationID,
	}
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	h.createNamed(w, r, func(ctx context.Context, name string) (uuid.UUID, error) {
		c := domain.Category{ID: uuid.New(), Name: name}
		return c.ID, h.repo.CreateCategory(ctx, c)
	})
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": namedItems(categories)})
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteByParam(w, r, h.repo.DeleteCategory)
}

func (h *Handlers) CreateLocation(w http.ResponseWriter, r *http.Request) {
	h.createNamed(w, r, func(ctx context.Context, name string) (uuid.UUID, error) {
		l := domain.Location{ID: uuid.New(), Name: name}
		return l.ID, h.repo.CreateLocation(ctx, l)
	})
}

func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repo.ListLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]map[string]interface{}, len(locations))
	for i, l := range locations {
		items[i] = map[string]interface{}{"id": l.ID, "name": l.Name}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": items})
}

func (h *Handlers) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	h.deleteByParam(w, r, h.repo.DeleteLocation)
}

func (h *Handlers) createNamed(w http.ResponseWriter, r *http.Request, create func(context.Context, string) (uuid.UUID, error)) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	id, err := create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "name": req.Name})
}

func (h *Handlers) deleteByParam(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := del(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func namedItems(categories []domain.Category) []map[string]interface{} {
	items := make([]map[string]interface{}, len(categories))
	for i, c := range categories {
		items[i] = map[string]interface{}{"id": c.ID, "name": c.Name}
	}
	return items
}

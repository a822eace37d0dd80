package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func (h *Handlers) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID      uuid.UUID `json:"event_id"`
		Name         string    `json:"name"`
		ReferralCode string    `json:"referral_code"`
		Discount     int64     `json:"discount"`
		Type         string    `json:"type"`
		UsageLimit   int       `json:"usage_limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	promoType := domain.PromotionType(req.Type)
	if promoType != domain.PromotionDiscount && promoType != domain.PromotionReferral {
		http.Error(w, "type must be DISCOUNT or REFERRAL", http.StatusBadRequest)
		return
	}

	promo, err := h.service.CreatePromotion(r.Context(), domain.Promotion{
		EventID:      req.EventID,
		Name:         req.Name,
		ReferralCode: req.ReferralCode,
		Discount:     req.Discount,
		Type:         promoType,
		UsageLimit:   req.UsageLimit,
		IsActive:     true,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, promotionResponse(promo))
}

func (h *Handlers) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	promo, err := h.repo.GetPromotion(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promotionResponse(promo))
}

func (h *Handlers) ListPromotions(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	promos, total, err := h.repo.ListActivePromotions(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]map[string]interface{}, len(promos))
	for i := range promos {
		items[i] = promotionResponse(&promos[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"promotions": items,
		"total":      total,
	})
}

func (h *Handlers) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Discount int64  `json:"discount"`
		IsActive bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Discount < 0 {
		http.Error(w, "discount must be non-negative", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdatePromotion(r.Context(), id, req.Name, req.Discount, req.IsActive); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	h.deleteByParam(w, r, h.repo.DeletePromotion)
}

func promotionResponse(p *domain.Promotion) map[string]interface{} {
	return map[string]interface{}{
		"id":            p.ID,
		"event_id":      p.EventID,
		"name":          p.Name,
		"referral_code": p.ReferralCode,
		"discount":      p.Discount,
		"type":          p.Type,
		"usage_limit":   p.UsageLimit,
		"used_count":    p.UsedCount,
		"is_active":     p.IsActive,
	}
}

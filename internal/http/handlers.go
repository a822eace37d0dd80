package http

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/adapters/postgres"
	redisadapter "github.com/tixgate/event-ticketing-backend/internal/adapters/redis"
	"github.com/tixgate/event-ticketing-backend/internal/config"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
	"github.com/tixgate/event-ticketing-backend/internal/idempotency"
	"github.com/tixgate/event-ticketing-backend/internal/observability"
	"github.com/tixgate/event-ticketing-backend/internal/ticketing"
)

const maxProofSize = 10 << 20 // 10 MiB

type Handlers struct {
	cfg     *config.Config
	logger  observability.Logger
	service *ticketing.Service
	repo    *postgres.Repository
	cache   *redisadapter.Cache
	idemp   *idempotency.Idempotency
}

func NewHandlers(cfg *config.Config, logger observability.Logger, service *ticketing.Service, repo *postgres.Repository, cache *redisadapter.Cache, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{
		cfg:     cfg,
		logger:  logger,
		service: service,
		repo:    repo,
		cache:   cache,
		idemp:   idemp,
	}
}

// Purchase buys tickets for the authenticated user. The Idempotency-Key
// header makes retried requests replay the stored response instead of buying
// twice.
func (h *Handlers) Purchase(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		EventID   uuid.UUID `json:"event_id"`
		SeatCount int       `json:"seat_count"`
		PromoCode string    `json:"promo_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txn, tickets, err := h.service.Purchase(r.Context(), userIDFrom(r.Context()), req.EventID, req.SeatCount, req.PromoCode)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.cache.InvalidateEvent(r.Context(), req.EventID.String()); err != nil {
		h.logger.Error("event cache invalidation failed: ", err)
	}

	ticketIDs := make([]uuid.UUID, len(tickets))
	for i, t := range tickets {
		ticketIDs[i] = t.ID
	}
	data := writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction_id": txn.ID,
		"total_amount":   txn.TotalAmount,
		"discount":       txn.Discount,
		"payment_status": txn.PaymentStatus,
		"ticket_ids":     ticketIDs,
	})

	if err := h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data}); err != nil {
		h.logger.Error("idempotency store failed: ", err)
	}
}

// UploadPaymentProof accepts a multipart "proof" file, stores it under the
// upload dir and moves the transaction to VERIFICATION.
func (h *Handlers) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if !h.ownsTransaction(w, r, id) {
		return
	}

	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("proof")
	if err != nil {
		writeError(w, domain.ErrMissingProof)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	name := uuid.New().String() + filepath.Ext(header.Filename)
	path := filepath.Join(h.cfg.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	dst.Close()

	txn, err := h.service.UploadPaymentProof(r.Context(), id, path)
	if err != nil {
		os.Remove(path)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": txn.ID,
		"payment_status": txn.PaymentStatus,
		"payment_proof":  txn.PaymentProof,
	})
}

// ConfirmPayment is the organizer-side verification that completes a
// transaction.
func (h *Handlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	txn, err := h.service.ConfirmPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": txn.ID,
		"payment_status": txn.PaymentStatus,
	})
}

func (h *Handlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	txn, err := h.repo.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	claims := claimsFrom(r.Context())
	if claims == nil || (txn.UserID != claims.UserID && claims.Role != domain.RoleOrganizer) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse(txn))
}

func (h *Handlers) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	txns, total, err := h.repo.ListUserTransactions(r.Context(), userIDFrom(r.Context()), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]map[string]interface{}, len(txns))
	for i := range txns {
		items[i] = transactionResponse(&txns[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": items,
		"total":        total,
	})
}

func (h *Handlers) GetTransactionTickets(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if !h.ownsTransaction(w, r, id) {
		return
	}

	tickets, err := h.repo.GetTransactionTickets(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]map[string]interface{}, len(tickets))
	for i, t := range tickets {
		items[i] = map[string]interface{}{
			"id":       t.ID,
			"event_id": t.EventID,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tickets": items})
}

// ownsTransaction loads the transaction and rejects callers who neither own
// it nor hold the organizer role. Writes the error response itself.
func (h *Handlers) ownsTransaction(w http.ResponseWriter, r *http.Request, id uuid.UUID) bool {
	txn, err := h.repo.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return false
	}
	claims := claimsFrom(r.Context())
	if claims == nil || (txn.UserID != claims.UserID && claims.Role != domain.RoleOrganizer) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func transactionResponse(txn *domain.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"id":             txn.ID,
		"event_id":       txn.EventID,
		"total_amount":   txn.TotalAmount,
		"discount":       txn.Discount,
		"referral_code":  txn.ReferralCode,
		"payment_status": txn.PaymentStatus,
		"created_at":     txn.CreatedAt,
	}
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Client().Ping(r.Context()).Err(); err != nil {
		http.Error(w, "redis not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/tixgate/event-ticketing-backend/internal/auth"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

const referralCodeAttempts = 5

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Name == "" || len(req.Password) < 8 {
		http.Error(w, "email, name and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}
	role := domain.RoleUser
	if req.Role == string(domain.RoleOrganizer) {
		role = domain.RoleOrganizer
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	code, err := h.freshReferralCode(r)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user := domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		ReferralCode: code,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":            user.ID,
		"email":         user.Email,
		"referral_code": user.ReferralCode,
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !auth.VerifyPassword(user.PasswordHash, req.Password)) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.NewAccessToken(h.cfg.JWTSecret, *user, h.cfg.AccessTokenTTL)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"expires_in":   int(h.cfg.AccessTokenTTL.Seconds()),
	})
}

// freshReferralCode draws random codes until one is unused. The unique index
// on users.referral_code still backs this up against races.
func (h *Handlers) freshReferralCode(r *http.Request) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code, err := auth.NewReferralCode()
		if err != nil {
			return "", err
		}
		taken, err := h.repo.ReferralCodeTaken(r.Context(), code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a referral code")
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
)

// Register handles account registration
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	message, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.RegisterResponse{Success: true, Message: message})
}

// VerifyRegister checks a one-time code and issues a session token
func (h *Handlers) VerifyRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	res, err := h.accounts.VerifyRegister(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   h.auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, domain.VerifyResponse{
		Success:   true,
		Message:   "Account verified",
		Token:     res.Token,
		ExpiresIn: int64(time.Until(res.ExpiresAt).Round(time.Second).Seconds()),
	})
}

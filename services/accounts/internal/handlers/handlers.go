package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diagnosis/luxsuv-accounts/pkg/config"
	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/service"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	accounts service.AccountService
	auth     config.AuthConfig
}

func New(accounts service.AccountService, auth config.AuthConfig) *Handlers {
	return &Handlers{accounts: accounts, auth: auth}
}

// Routes returns the account endpoints, ready to be mounted.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Welcome)
	r.Post("/register", h.Register)
	r.Post("/verify-register", h.VerifyRegister)
	return r
}

func (h *Handlers) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Welcome to the accounts service"))
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, errorResponse{Success: false, Message: message, Code: code})
}

type errorMapping struct {
	kind   error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrValidation, http.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrAlreadyRegistered, http.StatusBadRequest, "ALREADY_REGISTERED"},
	{domain.ErrTooManyAttempts, http.StatusBadRequest, "TOO_MANY_ATTEMPTS"},
	{domain.ErrNotFound, http.StatusBadRequest, "USER_NOT_FOUND"},
	{domain.ErrInvalidCode, http.StatusBadRequest, "INVALID_OTP"},
	{domain.ErrCodeExpired, http.StatusBadRequest, "OTP_EXPIRED"},
	{domain.ErrDeliveryFailure, http.StatusInternalServerError, "DELIVERY_FAILED"},
	{domain.ErrInvalidMethod, http.StatusInternalServerError, "INVALID_METHOD"},
}

// writeServiceError maps a service error onto the response envelope.
// Anything unrecognized is reported as an internal error without its text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		for _, m := range errorMappings {
			if errors.Is(err, m.kind) {
				if m.status >= http.StatusInternalServerError {
					logger.ErrorContext(r.Context(), "Request failed", "error", err, "code", m.code)
				}
				writeError(w, m.status, de.Message, m.code)
				return
			}
		}
	}

	logger.ErrorContext(r.Context(), "Internal error", "error", err)
	writeError(w, http.StatusInternalServerError, domain.MsgInternal, "INTERNAL_ERROR")
}

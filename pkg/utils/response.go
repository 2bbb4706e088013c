package utils

import (
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"go.uber.org/zap"
)

type Response struct {
	Error string `json:"error,omitempty" example:"insufficient balance"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Error: message})
}

// StatusFromError maps a domain error kind onto an HTTP status.
func StatusFromError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInsufficientBalance:
		return http.StatusPaymentRequired
	case domain.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithDomainError hides internal error text from clients.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	code := StatusFromError(err)
	if code == http.StatusInternalServerError {
		RespondWithError(w, code, "Internal server error")
		return
	}
	RespondWithError(w, code, err.Error())
}

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: amount", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrOrderNotFound, http.StatusNotFound},
		{domain.ErrAlreadyMember, http.StatusConflict},
		{domain.ErrInsufficientBalance, http.StatusPaymentRequired},
		{domain.ErrGatewayInitiation, http.StatusBadGateway},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, StatusFromError(tt.err))
		})
	}
}

func TestRespondWithDomainError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithDomainError(w, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Error)

	w = httptest.NewRecorder()
	RespondWithDomainError(w, domain.ErrCodeUsed)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, domain.ErrCodeUsed.Error(), body.Error)
}

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/dto"
	"github.com/GlebRadaev/memberhub/internal/service/authservice"
	"github.com/GlebRadaev/memberhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func TestLoginHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful login",
			body: `{"code":"c1","phone":"13800000000"}`,
			prepareMock: func() {
				service.EXPECT().Login(gomock.Any(), "c1", "13800000000").Return(&authservice.LoginResult{
					Token:   "user-token",
					User:    &domain.User{ID: 7, Phone: "13800000000", Enabled: true},
					Balance: &domain.Balance{UserID: 7, Available: 990},
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid request body",
			body:          `{invalid json`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:          "Missing code",
			body:          `{"phone":"13800000000"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Code failed on required",
		},
		{
			name: "Code rejected",
			body: `{"code":"bad"}`,
			prepareMock: func() {
				service.EXPECT().Login(gomock.Any(), "bad", "").Return(nil, fmt.Errorf("%w: 40029", domain.ErrInvalidCredentials))
			},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Invalid credentials",
		},
		{
			name: "Internal error",
			body: `{"code":"c1"}`,
			prepareMock: func() {
				service.EXPECT().Login(gomock.Any(), "c1", "").Return(nil, errors.New("db down"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Login(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
				return
			}
			var resp dto.LoginResponseDTO
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "user-token", resp.Token)
			assert.Equal(t, 7, resp.User.ID)
			assert.Equal(t, int64(990), resp.Balance.Available)
			assert.Equal(t, "Bearer user-token", rr.Header().Get("Authorization"))
		})
	}
}

func TestAdminLoginHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful login",
			body: `{"login":"root","password":"secret"}`,
			prepareMock: func() {
				service.EXPECT().AdminLogin(context.Background(), "root", "secret").Return("admin-token", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Missing password",
			body:         `{"login":"root"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Invalid credentials",
			body: `{"login":"root","password":"wrong"}`,
			prepareMock: func() {
				service.EXPECT().AdminLogin(context.Background(), "root", "wrong").Return("", domain.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.AdminLogin(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedCode == http.StatusOK {
				var resp dto.TokenResponseDTO
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "admin-token", resp.Token)
			}
		})
	}
}

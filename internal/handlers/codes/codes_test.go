package codes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/dto"
	"github.com/GlebRadaev/memberhub/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*CodeHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func TestActivateHandler(t *testing.T) {
	handler, service := NewMock(t)
	activatedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Code redeemed",
			body: `{"code":"vip-2024-05-01-ab3d-9kq2"}`,
			prepareMock: func() {
				service.EXPECT().ActivateByCode(gomock.Any(), 7, "vip-2024-05-01-ab3d-9kq2").Return(&domain.Membership{
					UserID: 7, Level: 1, Status: domain.MembershipActive, OpenType: domain.OpenTypeCode, ActivatedAt: &activatedAt,
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Missing code",
			body:         `{}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Code already used",
			body: `{"code":"USED"}`,
			prepareMock: func() {
				service.EXPECT().ActivateByCode(gomock.Any(), 7, "USED").Return(nil, domain.ErrCodeUsed)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Unknown code",
			body: `{"code":"NOPE"}`,
			prepareMock: func() {
				service.EXPECT().ActivateByCode(gomock.Any(), 7, "NOPE").Return(nil, domain.ErrCodeNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/codes/activate", bytes.NewBufferString(tt.body))
			r = r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, 7))
			w := httptest.NewRecorder()

			handler.Activate(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.MembershipResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, domain.MembershipActive, body.Status)
				assert.Equal(t, domain.OpenTypeCode, body.OpenType)
			}
		})
	}
}

func TestGetMembershipHandler(t *testing.T) {
	handler, service := NewMock(t)
	ctx := context.WithValue(context.Background(), auth.UserIDKey, 7)

	service.EXPECT().GetMembership(ctx, 7).Return(&domain.Membership{UserID: 7, Status: domain.MembershipInactive}, nil)
	w := httptest.NewRecorder()
	handler.GetMembership(w, httptest.NewRequest(http.MethodGet, "/api/membership", nil).WithContext(ctx))
	assert.Equal(t, http.StatusOK, w.Code)
	var body dto.MembershipResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, domain.MembershipInactive, body.Status)

	service.EXPECT().GetMembership(ctx, 7).Return(nil, errors.New("db error"))
	w = httptest.NewRecorder()
	handler.GetMembership(w, httptest.NewRequest(http.MethodGet, "/api/membership", nil).WithContext(ctx))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

package balance

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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*BalanceHandler, *MockService, *MockWithdrawService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	withdrawService := NewMockWithdrawService(ctrl)
	handler := New(service, withdrawService)
	return handler, service, withdrawService
}

func userCtx() context.Context {
	return context.WithValue(context.Background(), auth.UserIDKey, 1)
}

func TestGetBalanceHandler(t *testing.T) {
	handler, service, _ := NewMock(t)
	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedBody dto.BalanceDTO
	}{
		{
			name: "Successful retrieval",
			prepareMock: func() {
				service.EXPECT().
					GetBalance(userCtx(), 1).
					Return(&domain.Balance{UserID: 1, Available: 490, Frozen: 500, WithdrawnTotal: 1000}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.BalanceDTO{Available: 490, Frozen: 500, WithdrawnTotal: 1000},
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().
					GetBalance(userCtx(), 1).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodGet, "/api/balance", nil).WithContext(userCtx())
			w := httptest.NewRecorder()
			handler.GetBalance(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.BalanceDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}

func TestWithdrawHandler(t *testing.T) {
	handler, _, withdrawService := NewMock(t)
	const qr = "https://cdn.example.com/qr/1.png"

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Withdrawal applied",
			body: `{"amount":500,"qrImageUrl":"` + qr + `"}`,
			prepareMock: func() {
				withdrawService.EXPECT().Apply(userCtx(), 1, int64(500), qr).Return(&domain.WithdrawRecord{
					ID: 3, UserID: 1, Amount: 500, QRImageURL: qr, Status: domain.WithdrawPending,
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid body",
			body:         `{"amount":"lots"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Non positive amount",
			body:         `{"amount":0,"qrImageUrl":"` + qr + `"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "QR code is not a url",
			body:         `{"amount":500,"qrImageUrl":"qr.png"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Insufficient balance",
			body: `{"amount":5000,"qrImageUrl":"` + qr + `"}`,
			prepareMock: func() {
				withdrawService.EXPECT().Apply(userCtx(), 1, int64(5000), qr).Return(nil, domain.ErrInsufficientBalance)
			},
			expectedCode: http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/balance/withdraw", bytes.NewBufferString(tt.body)).WithContext(userCtx())
			w := httptest.NewRecorder()
			handler.Withdraw(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.WithdrawRecordDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, 3, body.ID)
				assert.Equal(t, domain.WithdrawPending, body.Status)
			}
		})
	}
}

func TestGetWithdrawalsHandler(t *testing.T) {
	handler, _, withdrawService := NewMock(t)
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	withdrawService.EXPECT().GetUserRecords(userCtx(), 1).Return([]domain.WithdrawRecord{
		{ID: 3, UserID: 1, Amount: 500, Status: domain.WithdrawRejected, RejectReason: "blurry", CreatedAt: createdAt},
	}, nil)
	w := httptest.NewRecorder()
	handler.GetWithdrawals(w, httptest.NewRequest(http.MethodGet, "/api/balance/withdrawals", nil).WithContext(userCtx()))
	assert.Equal(t, http.StatusOK, w.Code)
	var body []dto.WithdrawRecordDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "blurry", body[0].RejectReason)

	withdrawService.EXPECT().GetUserRecords(userCtx(), 1).Return(nil, nil)
	w = httptest.NewRecorder()
	handler.GetWithdrawals(w, httptest.NewRequest(http.MethodGet, "/api/balance/withdrawals", nil).WithContext(userCtx()))
	assert.Equal(t, http.StatusNoContent, w.Code)

	withdrawService.EXPECT().GetUserRecords(userCtx(), 1).Return(nil, errors.New("db error"))
	w = httptest.NewRecorder()
	handler.GetWithdrawals(w, httptest.NewRequest(http.MethodGet, "/api/balance/withdrawals", nil).WithContext(userCtx()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetPromotionsHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	service.EXPECT().GetPromotions(userCtx(), 1).Return([]domain.PromotionRecord{
		{ID: 1, PromoterID: 1, InvitedUserID: 7, OrderNo: "AF1", CommissionAmount: 990, CommissionRate: decimal.RequireFromString("0.1")},
	}, nil)
	w := httptest.NewRecorder()
	handler.GetPromotions(w, httptest.NewRequest(http.MethodGet, "/api/balance/promotions", nil).WithContext(userCtx()))
	assert.Equal(t, http.StatusOK, w.Code)
	var body []dto.PromotionRecordDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, int64(990), body[0].CommissionAmount)
	assert.Equal(t, "0.1", body[0].CommissionRate)

	service.EXPECT().GetPromotions(userCtx(), 1).Return(nil, nil)
	w = httptest.NewRecorder()
	handler.GetPromotions(w, httptest.NewRequest(http.MethodGet, "/api/balance/promotions", nil).WithContext(userCtx()))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

package orders

import (
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
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*OrderHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

var createdAt = time.Date(2024, 5, 1, 11, 59, 0, 0, time.UTC)

func TestGetOrdersHandler(t *testing.T) {
	handler, service := NewMock(t)
	ctx := context.WithValue(context.Background(), auth.UserIDKey, 7)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
		expectedBody []dto.OrderResponseDTO
	}{
		{
			name: "Orders found",
			prepareMock: func() {
				service.EXPECT().GetOrders(ctx, 7).Return([]domain.Order{{
					OrderNo: "AF20240501000042", ProductID: 1, ProductName: "Annual", PayAmount: 9900,
					PayStatus: domain.PayStatusPending, PromoterID: domain.NoPromoter, CreatedAt: createdAt,
				}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: []dto.OrderResponseDTO{{
				OrderNo: "AF20240501000042", ProductID: 1, ProductName: "Annual", PayAmount: 9900,
				PayStatus: domain.PayStatusPending, PromoterID: domain.NoPromoter, CreatedAt: createdAt,
			}},
		},
		{
			name: "No orders",
			prepareMock: func() {
				service.EXPECT().GetOrders(ctx, 7).Return(nil, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().GetOrders(ctx, 7).Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodGet, "/api/orders", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			handler.GetOrders(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != nil {
				var body []dto.OrderResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.expectedBody, body)
			}
		})
	}
}

func TestGetOrderHandler(t *testing.T) {
	handler, service := NewMock(t)

	request := func(orderNo string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("orderNo", orderNo)
		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
		ctx = context.WithValue(ctx, auth.UserIDKey, 7)
		return httptest.NewRequest(http.MethodGet, "/api/orders/"+orderNo, nil).WithContext(ctx)
	}

	service.EXPECT().GetOrder(gomock.Any(), 7, "AF1").Return(&domain.Order{OrderNo: "AF1", PayStatus: domain.PayStatusSuccess}, nil)
	w := httptest.NewRecorder()
	handler.GetOrder(w, request("AF1"))
	assert.Equal(t, http.StatusOK, w.Code)
	var body dto.OrderResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, domain.PayStatusSuccess, body.PayStatus)

	service.EXPECT().GetOrder(gomock.Any(), 7, "AF2").Return(nil, domain.ErrOrderNotFound)
	w = httptest.NewRecorder()
	handler.GetOrder(w, request("AF2"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

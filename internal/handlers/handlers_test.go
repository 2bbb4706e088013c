package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/GlebRadaev/memberhub/docs"
	"github.com/GlebRadaev/memberhub/internal/handlers/admin"
	"github.com/GlebRadaev/memberhub/internal/handlers/auth"
	"github.com/GlebRadaev/memberhub/internal/handlers/balance"
	"github.com/GlebRadaev/memberhub/internal/handlers/codes"
	"github.com/GlebRadaev/memberhub/internal/handlers/orders"
	"github.com/GlebRadaev/memberhub/internal/handlers/pay"
	"github.com/GlebRadaev/memberhub/internal/service"
	pkgauth "github.com/GlebRadaev/memberhub/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)

	withdrawService := balance.NewMockWithdrawService(ctrl)
	services := &service.Services{
		AuthService:     auth.NewMockService(ctrl),
		PayService:      pay.NewMockService(ctrl),
		OrderService:    orders.NewMockService(ctrl),
		CodeService:     codes.NewMockService(ctrl),
		BalanceService:  balance.NewMockService(ctrl),
		WithdrawService: withdrawService,
		AdminWithdraw:   admin.NewMockWithdrawService(ctrl),
		AdminCodes:      admin.NewMockCodeService(ctrl),
		AdminPromoters:  admin.NewMockPromoterService(ctrl),
	}

	h := New(services, pkgauth.NewMockJWTServiceInterface(ctrl), false)
	assert.NotNil(t, h, "Handlers should not be nil")
	assert.NotNil(t, h.AdminHandler)
	assert.NotNil(t, h.PayHandler)
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)

	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	mockAuthHandler := NewMockAuthHandler(ctrl)
	mockPayHandler := NewMockPayHandler(ctrl)
	mockOrderHandler := NewMockOrderHandler(ctrl)
	mockCodeHandler := NewMockCodeHandler(ctrl)
	mockBalanceHandler := NewMockBalanceHandler(ctrl)
	mockAdminHandler := NewMockAdminHandler(ctrl)
	jwt := pkgauth.NewMockJWTServiceInterface(ctrl)

	mockAuthHandler.EXPECT().Login(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockAuthHandler.EXPECT().AdminLogin(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockPayHandler.EXPECT().Callback(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockPayHandler.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockPayHandler.EXPECT().Repay(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockOrderHandler.EXPECT().GetOrders(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockOrderHandler.EXPECT().GetOrder(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockCodeHandler.EXPECT().Activate(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockCodeHandler.EXPECT().GetMembership(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockBalanceHandler.EXPECT().GetBalance(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockBalanceHandler.EXPECT().Withdraw(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockBalanceHandler.EXPECT().GetWithdrawals(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockBalanceHandler.EXPECT().GetPromotions(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockAdminHandler.EXPECT().ListWithdrawals(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockAdminHandler.EXPECT().HandleWithdrawal(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockAdminHandler.EXPECT().GenerateCodes(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockAdminHandler.EXPECT().RevokeCode(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockAdminHandler.EXPECT().SetPromoter(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()

	jwt.EXPECT().ValidateToken("user-token").Return(&pkgauth.Claims{UserID: 7, Role: pkgauth.RoleUser}, nil).AnyTimes()
	jwt.EXPECT().ValidateToken("admin-token").Return(&pkgauth.Claims{UserID: 1, Role: pkgauth.RoleAdmin}, nil).AnyTimes()
	jwt.EXPECT().ValidateToken("bad-token").Return(nil, errors.New("invalid token")).AnyTimes()

	h := &Handlers{
		AuthHandler:    mockAuthHandler,
		PayHandler:     mockPayHandler,
		OrderHandler:   mockOrderHandler,
		CodeHandler:    mockCodeHandler,
		BalanceHandler: mockBalanceHandler,
		AdminHandler:   mockAdminHandler,
		jwtService:     jwt,
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	tests := []struct {
		method string
		url    string
		token  string
		status int
	}{
		{"POST", "/api/auth/login", "", http.StatusOK},
		{"POST", "/api/admin/login", "", http.StatusOK},
		{"POST", "/api/pay/callback", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"POST", "/api/pay/orders", "", http.StatusUnauthorized},
		{"POST", "/api/pay/orders", "bad-token", http.StatusUnauthorized},
		{"POST", "/api/pay/orders", "user-token", http.StatusOK},
		{"POST", "/api/pay/orders/AF1/repay", "user-token", http.StatusOK},
		{"GET", "/api/orders", "", http.StatusUnauthorized},
		{"GET", "/api/orders", "user-token", http.StatusOK},
		{"GET", "/api/orders/AF1", "user-token", http.StatusOK},
		{"POST", "/api/codes/activate", "user-token", http.StatusOK},
		{"GET", "/api/membership", "user-token", http.StatusOK},
		{"GET", "/api/balance", "", http.StatusUnauthorized},
		{"GET", "/api/balance", "user-token", http.StatusOK},
		{"GET", "/api/balance", "admin-token", http.StatusForbidden},
		{"POST", "/api/balance/withdraw", "user-token", http.StatusOK},
		{"GET", "/api/balance/withdrawals", "user-token", http.StatusOK},
		{"GET", "/api/balance/promotions", "user-token", http.StatusOK},
		{"GET", "/api/admin/withdrawals", "", http.StatusUnauthorized},
		{"GET", "/api/admin/withdrawals", "user-token", http.StatusForbidden},
		{"GET", "/api/admin/withdrawals", "admin-token", http.StatusOK},
		{"POST", "/api/admin/withdrawals/3/handle", "admin-token", http.StatusOK},
		{"POST", "/api/admin/codes", "admin-token", http.StatusOK},
		{"DELETE", "/api/admin/codes/VIP-1", "admin-token", http.StatusOK},
		{"PUT", "/api/admin/users/42/promoter", "admin-token", http.StatusOK},
		{"PUT", "/api/admin/users/42/promoter", "user-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url+" "+tt.token, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestInitRoutesForwardedFor(t *testing.T) {
	const forwarded = "203.0.113.9"

	tests := []struct {
		name       string
		trustProxy bool
		expected   string
	}{
		{name: "Header ignored without proxy", trustProxy: false, expected: "192.0.2.1:1234"},
		{name: "Header honoured behind proxy", trustProxy: true, expected: forwarded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockPayHandler := NewMockPayHandler(ctrl)

			var remoteAddr string
			mockPayHandler.EXPECT().Callback(gomock.Any(), gomock.Any()).
				Do(func(w http.ResponseWriter, r *http.Request) {
					remoteAddr = r.RemoteAddr
					w.WriteHeader(http.StatusOK)
				})

			h := &Handlers{
				AuthHandler:    NewMockAuthHandler(ctrl),
				PayHandler:     mockPayHandler,
				OrderHandler:   NewMockOrderHandler(ctrl),
				CodeHandler:    NewMockCodeHandler(ctrl),
				BalanceHandler: NewMockBalanceHandler(ctrl),
				AdminHandler:   NewMockAdminHandler(ctrl),
				jwtService:     pkgauth.NewMockJWTServiceInterface(ctrl),
				trustProxy:     tt.trustProxy,
			}
			router := chi.NewRouter()
			h.InitRoutes(router)

			req := httptest.NewRequest(http.MethodPost, "/api/pay/callback", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			req.Header.Set("X-Forwarded-For", forwarded)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.expected, remoteAddr)
		})
	}
}

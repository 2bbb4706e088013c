package handlers

import (
	"net/http"

	_ "github.com/GlebRadaev/memberhub/docs"
	adminhandlers "github.com/GlebRadaev/memberhub/internal/handlers/admin"
	authhandlers "github.com/GlebRadaev/memberhub/internal/handlers/auth"
	balancehandlers "github.com/GlebRadaev/memberhub/internal/handlers/balance"
	codeshandlers "github.com/GlebRadaev/memberhub/internal/handlers/codes"
	ordershandlers "github.com/GlebRadaev/memberhub/internal/handlers/orders"
	payhandlers "github.com/GlebRadaev/memberhub/internal/handlers/pay"
	"github.com/GlebRadaev/memberhub/internal/service"
	"github.com/GlebRadaev/memberhub/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	AdminLogin(w http.ResponseWriter, r *http.Request)
}

type PayHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	Repay(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	GetOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
}

type CodeHandler interface {
	Activate(w http.ResponseWriter, r *http.Request)
	GetMembership(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
	GetWithdrawals(w http.ResponseWriter, r *http.Request)
	GetPromotions(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	ListWithdrawals(w http.ResponseWriter, r *http.Request)
	HandleWithdrawal(w http.ResponseWriter, r *http.Request)
	GenerateCodes(w http.ResponseWriter, r *http.Request)
	RevokeCode(w http.ResponseWriter, r *http.Request)
	SetPromoter(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	PayHandler     PayHandler
	OrderHandler   OrderHandler
	CodeHandler    CodeHandler
	BalanceHandler BalanceHandler
	AdminHandler   AdminHandler

	jwtService auth.JWTServiceInterface
	trustProxy bool
}

// New builds the handler set. trustProxy must only be set when the server
// sits behind a reverse proxy that overwrites X-Forwarded-For and X-Real-IP;
// otherwise clients could choose the payer IP sent to the gateway.
func New(s *service.Services, jwtService auth.JWTServiceInterface, trustProxy bool) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService),
		PayHandler:     payhandlers.New(s.PayService),
		OrderHandler:   ordershandlers.New(s.OrderService),
		CodeHandler:    codeshandlers.New(s.CodeService),
		BalanceHandler: balancehandlers.New(s.BalanceService, s.WithdrawService),
		AdminHandler:   adminhandlers.New(s.AdminWithdraw, s.AdminCodes, s.AdminPromoters),
		jwtService:     jwtService,
		trustProxy:     trustProxy,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	if h.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.AuthHandler.Login)
		r.Post("/pay/callback", h.PayHandler.Callback)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwtService), auth.RequireRole(auth.RoleUser))
			r.Route("/pay/orders", func(r chi.Router) {
				r.Post("/", h.PayHandler.CreateOrder)
				r.Post("/{orderNo}/repay", h.PayHandler.Repay)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.OrderHandler.GetOrders)
				r.Get("/{orderNo}", h.OrderHandler.GetOrder)
			})
			r.Post("/codes/activate", h.CodeHandler.Activate)
			r.Get("/membership", h.CodeHandler.GetMembership)
			r.Route("/balance", func(r chi.Router) {
				r.Get("/", h.BalanceHandler.GetBalance)
				r.Post("/withdraw", h.BalanceHandler.Withdraw)
				r.Get("/withdrawals", h.BalanceHandler.GetWithdrawals)
				r.Get("/promotions", h.BalanceHandler.GetPromotions)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.AuthHandler.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(auth.AuthMiddleware(h.jwtService), auth.RequireRole(auth.RoleAdmin))
				r.Get("/withdrawals", h.AdminHandler.ListWithdrawals)
				r.Post("/withdrawals/{id}/handle", h.AdminHandler.HandleWithdrawal)
				r.Post("/codes", h.AdminHandler.GenerateCodes)
				r.Delete("/codes/{code}", h.AdminHandler.RevokeCode)
				r.Put("/users/{id}/promoter", h.AdminHandler.SetPromoter)
			})
		})
	})

	return r
}

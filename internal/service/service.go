package service

import (
	"context"

	"github.com/GlebRadaev/memberhub/internal/commission"
	"github.com/GlebRadaev/memberhub/internal/config"
	"github.com/GlebRadaev/memberhub/internal/handlers/admin"
	"github.com/GlebRadaev/memberhub/internal/handlers/auth"
	"github.com/GlebRadaev/memberhub/internal/handlers/balance"
	"github.com/GlebRadaev/memberhub/internal/handlers/codes"
	"github.com/GlebRadaev/memberhub/internal/handlers/orders"
	"github.com/GlebRadaev/memberhub/internal/handlers/pay"
	"github.com/GlebRadaev/memberhub/internal/payment"
	"github.com/GlebRadaev/memberhub/internal/reconcile"

	pkgauth "github.com/GlebRadaev/memberhub/pkg/auth"

	"github.com/GlebRadaev/memberhub/internal/repo"
	authservice "github.com/GlebRadaev/memberhub/internal/service/authservice"
	balanceservice "github.com/GlebRadaev/memberhub/internal/service/balanceservice"
	memberservice "github.com/GlebRadaev/memberhub/internal/service/memberservice"
	orderservice "github.com/GlebRadaev/memberhub/internal/service/orderservice"
	paymentservice "github.com/GlebRadaev/memberhub/internal/service/paymentservice"
	promoterservice "github.com/GlebRadaev/memberhub/internal/service/promoterservice"
	withdrawservice "github.com/GlebRadaev/memberhub/internal/service/withdrawservice"
)

type AdminBootstrapper interface {
	EnsureAdmin(ctx context.Context, login, password string) error
}

// Deps are the outbound collaborators built by the application.
type Deps struct {
	Gateway  payment.Gateway
	Sessions authservice.Sessions
	JWT      pkgauth.JWTServiceInterface
}

type Services struct {
	AuthService     auth.Service
	PayService      pay.Service
	OrderService    orders.Service
	CodeService     codes.Service
	BalanceService  balance.Service
	WithdrawService balance.WithdrawService
	AdminWithdraw   admin.WithdrawService
	AdminCodes      admin.CodeService
	AdminPromoters  admin.PromoterService

	Bootstrap  AdminBootstrapper
	Dispatcher *commission.Dispatcher
	Reconciler *reconcile.Service
}

func New(cfg *config.Config, repo *repo.Repositories, deps Deps) *Services {
	balanceService := balanceservice.New(repo.BalanceRepo, repo.PromotionRepo)
	withdrawService := withdrawservice.New(repo.Withdrawal, balanceService, repo.TxManager)
	memberService := memberservice.New(repo.UserRepo, repo.ProductRepo, repo.MemberRepo, repo.CodeRepo, repo.TxManager)
	orderService := orderservice.New(repo.OrderRepo, repo.UserRepo, repo.ProductRepo, repo.MemberRepo,
		memberService, repo.TxManager, cfg.OrderPrefix)
	authService := authservice.New(repo.UserRepo, repo.AdminRepo, balanceService, deps.Sessions,
		&pkgauth.HashService{}, deps.JWT)

	processor := commission.NewProcessor(repo.UserRepo, repo.PromotionRepo, balanceService, repo.TxManager)
	dispatcher := commission.NewDispatcher(processor, cfg.CommissionWorkers)
	paymentService := paymentservice.New(orderService, repo.UserRepo, repo.MemberRepo, deps.Gateway, dispatcher)

	return &Services{
		AuthService:     authService,
		PayService:      paymentService,
		OrderService:    orderService,
		CodeService:     memberService,
		BalanceService:  balanceService,
		WithdrawService: withdrawService,
		AdminWithdraw:   withdrawService,
		AdminCodes:      memberService,
		AdminPromoters:  promoterservice.New(repo.UserRepo),
		Bootstrap:       authService,
		Dispatcher:      dispatcher,
		Reconciler:      reconcile.New(cfg, orderService, deps.Gateway, dispatcher),
	}
}

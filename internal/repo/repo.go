package repo

import (
	"github.com/GlebRadaev/memberhub/internal/pg"
	adminrepo "github.com/GlebRadaev/memberhub/internal/repo/admin-repo"
	balancerepo "github.com/GlebRadaev/memberhub/internal/repo/balance-repo"
	coderepo "github.com/GlebRadaev/memberhub/internal/repo/code-repo"
	memberrepo "github.com/GlebRadaev/memberhub/internal/repo/member-repo"
	orderrepo "github.com/GlebRadaev/memberhub/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/memberhub/internal/repo/product-repo"
	promotionrepo "github.com/GlebRadaev/memberhub/internal/repo/promotion-repo"
	userrepo "github.com/GlebRadaev/memberhub/internal/repo/user-repo"
	withdrawalrepo "github.com/GlebRadaev/memberhub/internal/repo/withdrawal-repo"
)

type Repositories struct {
	UserRepo      *userrepo.Repository
	AdminRepo     *adminrepo.Repository
	ProductRepo   *productrepo.Repository
	OrderRepo     *orderrepo.Repository
	MemberRepo    *memberrepo.Repository
	CodeRepo      *coderepo.Repository
	BalanceRepo   *balancerepo.Repository
	Withdrawal    *withdrawalrepo.Repository
	PromotionRepo *promotionrepo.Repository

	TxManager pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:      userrepo.New(conn),
		AdminRepo:     adminrepo.New(conn),
		ProductRepo:   productrepo.New(conn),
		OrderRepo:     orderrepo.New(conn),
		MemberRepo:    memberrepo.New(conn),
		CodeRepo:      coderepo.New(conn),
		BalanceRepo:   balancerepo.New(conn),
		Withdrawal:    withdrawalrepo.New(conn),
		PromotionRepo: promotionrepo.New(conn),
		TxManager:     txManager,
	}
}

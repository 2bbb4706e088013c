package commission

import (
	"context"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=processor.go -destination=mock_processor.go -package=commission

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type PromotionRepo interface {
	Create(ctx context.Context, rec *domain.PromotionRecord) (bool, error)
}

type Ledger interface {
	Credit(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
}

// Processor credits the promoter of a settled order. It is idempotent per
// order: the promotion record is unique by order number and is written in
// the same transaction as the credit.
type Processor struct {
	users      UserRepo
	promotions PromotionRepo
	ledger     Ledger
	txManager  pg.TXManager
	now        func() time.Time
}

func NewProcessor(users UserRepo, promotions PromotionRepo, ledger Ledger, txManager pg.TXManager) *Processor {
	return &Processor{
		users:      users,
		promotions: promotions,
		ledger:     ledger,
		txManager:  txManager,
		now:        time.Now,
	}
}

// Amount is pay amount times rate, rounded half away from zero to a whole fen.
func Amount(payAmount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(payAmount).Mul(rate).Round(0).IntPart()
}

func (p *Processor) Process(ctx context.Context, order domain.Order) error {
	if !order.HasPromoter() {
		metrics.Commissions.WithLabelValues(metrics.CommissionSkipped).Inc()
		return nil
	}

	promoter, err := p.users.FindByID(ctx, order.PromoterID)
	if err != nil {
		return err
	}
	if promoter == nil || !promoter.Enabled || !promoter.IsPromoter {
		zap.L().Info("promoter no longer eligible, commission skipped",
			zap.String("order_no", order.OrderNo), zap.Int("promoter_id", order.PromoterID))
		metrics.Commissions.WithLabelValues(metrics.CommissionSkipped).Inc()
		return nil
	}

	purchaseTime := p.now()
	if order.PayTime != nil {
		purchaseTime = *order.PayTime
	}
	record := &domain.PromotionRecord{
		PromoterID:       promoter.ID,
		InvitedUserID:    order.UserID,
		OrderNo:          order.OrderNo,
		CommissionAmount: Amount(order.PayAmount, promoter.CommissionRate),
		CommissionRate:   promoter.CommissionRate,
		PurchaseTime:     purchaseTime,
	}

	credited := false
	err = p.txManager.Begin(ctx, func(ctx context.Context) error {
		created, err := p.promotions.Create(ctx, record)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		if record.CommissionAmount > 0 {
			if _, err := p.ledger.Credit(ctx, promoter.ID, record.CommissionAmount); err != nil {
				return err
			}
		}
		credited = true
		return nil
	})
	if err != nil {
		return err
	}

	if !credited {
		zap.L().Info("commission already recorded", zap.String("order_no", order.OrderNo))
		metrics.Commissions.WithLabelValues(metrics.CommissionExisting).Inc()
		return nil
	}
	metrics.Commissions.WithLabelValues(metrics.CommissionCredited).Inc()
	zap.L().Info("commission credited", zap.String("order_no", order.OrderNo), zap.Int("promoter_id", promoter.ID),
		zap.Int64("amount", record.CommissionAmount), zap.String("rate", promoter.CommissionRate.String()))
	return nil
}

package promotionrepo

import (
	"context"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Create reports false when the order already has a promotion record.
func (r *Repository) Create(ctx context.Context, rec *domain.PromotionRecord) (bool, error) {
	query := `
		INSERT INTO promotion_records (promoter_id, invited_user_id, order_no, commission_amount, commission_rate, purchase_time)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)
		ON CONFLICT (order_no) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, rec.PromoterID, rec.InvitedUserID, rec.OrderNo, rec.CommissionAmount,
		rec.CommissionRate.StringFixed(4), rec.PurchaseTime)
	if err != nil {
		zap.L().Error("can't save promotion record", zap.String("order_no", rec.OrderNo), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) FindByPromoter(ctx context.Context, promoterID int) ([]domain.PromotionRecord, error) {
	query := `
		SELECT id, promoter_id, invited_user_id, order_no, commission_amount, commission_rate::text, purchase_time
		FROM promotion_records
		WHERE promoter_id = $1
		ORDER BY id DESC
	`
	rows, err := r.db.Query(ctx, query, promoterID)
	if err != nil {
		zap.L().Error("can't get promotion records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []domain.PromotionRecord
	for rows.Next() {
		var (
			rec  domain.PromotionRecord
			rate string
		)
		if err := rows.Scan(&rec.ID, &rec.PromoterID, &rec.InvitedUserID, &rec.OrderNo, &rec.CommissionAmount, &rate, &rec.PurchaseTime); err != nil {
			zap.L().Error("can't scan promotion record", zap.Error(err))
			return nil, err
		}
		if rec.CommissionRate, err = decimal.NewFromString(rate); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const orderColumns = `id, order_no, user_id, product_id, product_name, pay_amount, pay_status, promoter_id,
	pay_type, mchid, transaction_id, pay_time, callback_payload, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNo, &o.UserID, &o.ProductID, &o.ProductName, &o.PayAmount, &o.PayStatus,
		&o.PromoterID, &o.PayType, &o.MchID, &o.TransactionID, &o.PayTime, &o.CallbackPayload, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate order rows", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// Create returns the raw driver error so callers can detect an order number
// collision.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
		INSERT INTO orders (order_no, user_id, product_id, product_name, pay_amount, pay_status, promoter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, order.OrderNo, order.UserID, order.ProductID, order.ProductName,
		order.PayAmount, order.PayStatus, order.PromoterID).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		zap.L().Warn("can't save order", zap.String("order_no", order.OrderNo), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	return r.findOne(ctx, "SELECT "+orderColumns+" FROM orders WHERE order_no = $1", orderNo)
}

// FindByOrderNoForUpdate must run inside a transaction.
func (r *Repository) FindByOrderNoForUpdate(ctx context.Context, orderNo string) (*domain.Order, error) {
	return r.findOne(ctx, "SELECT "+orderColumns+" FROM orders WHERE order_no = $1 FOR UPDATE", orderNo)
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Order, error) {
	return r.findMany(ctx, "SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
}

// FindStalePending lists PENDING orders created in [from, to), oldest first.
func (r *Repository) FindStalePending(ctx context.Context, from, to time.Time, limit int) ([]domain.Order, error) {
	query := "SELECT " + orderColumns + ` FROM orders
		WHERE pay_status = 'PENDING' AND created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3`
	return r.findMany(ctx, query, from, to, limit)
}

func (r *Repository) UpdateSettlement(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET pay_status = $1, pay_type = $2, mchid = $3, transaction_id = $4, pay_time = $5, callback_payload = $6
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, order.PayStatus, order.PayType, order.MchID, order.TransactionID,
		order.PayTime, order.CallbackPayload, order.ID)
	if err != nil {
		zap.L().Error("failed to update order settlement", zap.String("order_no", order.OrderNo), zap.Error(err))
		return err
	}
	return nil
}

// MarkFailed only moves a still PENDING order.
func (r *Repository) MarkFailed(ctx context.Context, orderNo, state string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET pay_status = $1 WHERE order_no = $2 AND pay_status = 'PENDING'`, state, orderNo)
	if err != nil {
		zap.L().Error("failed to mark order failed", zap.String("order_no", orderNo), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

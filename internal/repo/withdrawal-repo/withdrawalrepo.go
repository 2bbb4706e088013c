package withdrawalrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const recordColumns = `id, user_id, amount, qr_image_url, status, handled_at, reject_reason, admin_id, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanRecord(row pgx.Row) (*domain.WithdrawRecord, error) {
	var wd domain.WithdrawRecord
	err := row.Scan(&wd.ID, &wd.UserID, &wd.Amount, &wd.QRImageURL, &wd.Status, &wd.HandledAt,
		&wd.RejectReason, &wd.AdminID, &wd.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &wd, nil
}

func (r *Repository) Create(ctx context.Context, record *domain.WithdrawRecord) (*domain.WithdrawRecord, error) {
	query := `
		INSERT INTO withdraw_records (user_id, amount, qr_image_url, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, record.UserID, record.Amount, record.QRImageURL, record.Status).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		zap.L().Error("can't save withdraw record", zap.Error(err))
		return nil, err
	}
	return record, nil
}

// FindByIDForUpdate must run inside a transaction.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.WithdrawRecord, error) {
	record, err := scanRecord(r.db.QueryRow(ctx, "SELECT "+recordColumns+" FROM withdraw_records WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find withdraw record", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, record *domain.WithdrawRecord) error {
	query := `
		UPDATE withdraw_records
		SET status = $1, handled_at = $2, reject_reason = $3, admin_id = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, record.Status, record.HandledAt, record.RejectReason, record.AdminID, record.ID)
	if err != nil {
		zap.L().Error("can't update withdraw record", zap.Int("id", record.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.WithdrawRecord, error) {
	return r.collect(ctx, "SELECT "+recordColumns+" FROM withdraw_records WHERE user_id = $1 ORDER BY id DESC", userID)
}

// List pages records with unhandled ones first and returns the total count
// matching the filter.
func (r *Repository) List(ctx context.Context, f domain.WithdrawFilter) ([]domain.WithdrawRecord, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM withdraw_records"+where, args...).Scan(&total); err != nil {
		zap.L().Error("can't count withdraw records", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := "SELECT " + recordColumns + " FROM withdraw_records" + where +
		fmt.Sprintf(" ORDER BY status ASC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	records, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *Repository) collect(ctx context.Context, query string, args ...any) ([]domain.WithdrawRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch withdraw records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []domain.WithdrawRecord
	for rows.Next() {
		wd, err := scanRecord(rows)
		if err != nil {
			zap.L().Error("failed to scan withdraw record row", zap.Error(err))
			return nil, err
		}
		records = append(records, *wd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

package coderepo

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/jackc/pgx/v5"
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

// FindForUpdate locks the code row; it must run inside a transaction.
func (r *Repository) FindForUpdate(ctx context.Context, code string) (*domain.ActivationCode, error) {
	query := `
		SELECT id, code, product_id, status, user_id, activated_at, created_at
		FROM activation_codes
		WHERE code = $1
		FOR UPDATE
	`
	var c domain.ActivationCode
	err := r.db.QueryRow(ctx, query, code).
		Scan(&c.ID, &c.Code, &c.ProductID, &c.Status, &c.UserID, &c.ActivatedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find activation code", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

// MarkUsed reports false when the code was no longer UNUSED.
func (r *Repository) MarkUsed(ctx context.Context, codeID, userID int, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE activation_codes
		SET status = 1, user_id = $1, activated_at = $2
		WHERE id = $3 AND status = 0
	`, userID, at, codeID)
	if err != nil {
		zap.L().Error("can't mark activation code used", zap.Int("code_id", codeID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CreateBatch inserts codes for a product and returns the ones actually
// written; codes that already exist are skipped.
func (r *Repository) CreateBatch(ctx context.Context, productID int, codes []string) ([]string, error) {
	query := `
		INSERT INTO activation_codes (code, product_id)
		SELECT unnest($1::text[]), $2
		ON CONFLICT (code) DO NOTHING
		RETURNING code
	`
	rows, err := r.db.Query(ctx, query, codes, productID)
	if err != nil {
		zap.L().Error("can't create activation codes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	created := make([]string, 0, len(codes))
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			zap.L().Error("can't scan activation code", zap.Error(err))
			return nil, err
		}
		created = append(created, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return created, nil
}

// Revoke only moves an UNUSED code.
func (r *Repository) Revoke(ctx context.Context, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE activation_codes SET status = 2 WHERE code = $1 AND status = 0`, code)
	if err != nil {
		zap.L().Error("can't revoke activation code", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

package balancerepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"go.uber.org/zap"
)

const checkViolation = "23514"

const returning = ` RETURNING id, user_id, available, frozen, withdrawn_total`

// Every mutation is a single conditional statement so the guard is evaluated
// against the row being written.
const (
	getQuery = `SELECT id, user_id, available, frozen, withdrawn_total FROM balances WHERE user_id = $1`

	ensureQuery = `INSERT INTO balances (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id` + returning

	creditQuery = `INSERT INTO balances (user_id, available) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET available = balances.available + EXCLUDED.available` + returning

	debitQuery = `UPDATE balances SET available = available - $2
		WHERE user_id = $1 AND available >= $2` + returning

	freezeQuery = `UPDATE balances SET available = available - $2, frozen = frozen + $2
		WHERE user_id = $1 AND available >= $2` + returning

	releaseQuery = `UPDATE balances SET frozen = frozen - $2, withdrawn_total = withdrawn_total + $2
		WHERE user_id = $1 AND frozen >= $2` + returning

	unfreezeQuery = `UPDATE balances SET frozen = frozen - $2, available = available + $2
		WHERE user_id = $1 AND frozen >= $2` + returning
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var b domain.Balance
	if err := row.Scan(&b.ID, &b.UserID, &b.Available, &b.Frozen, &b.WithdrawnTotal); err != nil {
		return nil, err
	}
	return &b, nil
}

// Get returns nil, nil when the user has no balance row yet.
func (r *Repository) Get(ctx context.Context, userID int) (*domain.Balance, error) {
	b, err := scanBalance(r.db.QueryRow(ctx, getQuery, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get user balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return b, nil
}

func (r *Repository) Ensure(ctx context.Context, userID int) (*domain.Balance, error) {
	b, err := scanBalance(r.db.QueryRow(ctx, ensureQuery, userID))
	if err != nil {
		zap.L().Error("failed to ensure user balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return b, nil
}

func (r *Repository) Credit(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return r.mutate(ctx, "credit", creditQuery, userID, amount)
}

func (r *Repository) Debit(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return r.mutate(ctx, "debit", debitQuery, userID, amount)
}

func (r *Repository) Freeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return r.mutate(ctx, "freeze", freezeQuery, userID, amount)
}

func (r *Repository) Release(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return r.mutate(ctx, "release", releaseQuery, userID, amount)
}

func (r *Repository) Unfreeze(ctx context.Context, userID int, amount int64) (*domain.Balance, error) {
	return r.mutate(ctx, "unfreeze", unfreezeQuery, userID, amount)
}

func (r *Repository) mutate(ctx context.Context, op, query string, userID int, amount int64) (*domain.Balance, error) {
	b, err := scanBalance(r.db.QueryRow(ctx, query, userID, amount))
	if err == nil {
		return b, nil
	}
	var pgErr *pgconn.PgError
	if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == checkViolation) {
		return nil, fmt.Errorf("%w: %s %d for user %d", domain.ErrInsufficientBalance, op, amount, userID)
	}
	zap.L().Error("failed to mutate balance", zap.String("op", op), zap.Int("user_id", userID), zap.Error(err))
	return nil, err
}

package memberrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const memberColumns = `id, user_id, level, status, open_type, product_id, origin_order_no, activated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) findOne(ctx context.Context, query string, userID int) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&m.ID, &m.UserID, &m.Level, &m.Status, &m.OpenType, &m.ProductID, &m.OriginOrderNo, &m.ActivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find membership", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &m, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) (*domain.Membership, error) {
	return r.findOne(ctx, "SELECT "+memberColumns+" FROM memberships WHERE user_id = $1", userID)
}

// FindByUserIDForUpdate must run inside a transaction.
func (r *Repository) FindByUserIDForUpdate(ctx context.Context, userID int) (*domain.Membership, error) {
	return r.findOne(ctx, "SELECT "+memberColumns+" FROM memberships WHERE user_id = $1 FOR UPDATE", userID)
}

// Activate inserts an ACTIVE membership or flips an INACTIVE one. It returns
// nil, nil when the user already holds an ACTIVE membership, which also
// covers two first activations racing without a row to lock.
func (r *Repository) Activate(ctx context.Context, m *domain.Membership) (*domain.Membership, error) {
	query := `
		INSERT INTO memberships (user_id, level, status, open_type, product_id, origin_order_no, activated_at)
		VALUES ($1, $2, 1, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET level = EXCLUDED.level, status = 1, open_type = EXCLUDED.open_type, product_id = EXCLUDED.product_id,
			origin_order_no = EXCLUDED.origin_order_no, activated_at = EXCLUDED.activated_at
		WHERE memberships.status = 0
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, m.UserID, m.Level, m.OpenType, m.ProductID, m.OriginOrderNo, m.ActivatedAt).Scan(&m.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't activate membership", zap.Int("user_id", m.UserID), zap.Error(err))
		return nil, err
	}
	m.Status = domain.MembershipActive
	return m, nil
}

package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const userColumns = `id, openid, phone, nickname, role, is_promoter, commission_rate::text, enabled, created_at, last_login_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		rate string
	)
	err := row.Scan(&user.ID, &user.OpenID, &user.Phone, &user.Nickname, &user.Role, &user.IsPromoter,
		&rate, &user.Enabled, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		return nil, err
	}
	user.CommissionRate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("parse commission rate %q: %w", rate, err)
	}
	return &user, nil
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Int("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByOpenID(ctx context.Context, openID string) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE openid = $1", openID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by openid", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// FindOrCreate is race-safe: concurrent first logins of one openid resolve to
// the same row. A non-empty phone overwrites the stored one.
func (repo *Repository) FindOrCreate(ctx context.Context, openID, phone string) (*domain.User, error) {
	query := `
		INSERT INTO users (openid, phone)
		VALUES ($1, $2)
		ON CONFLICT (openid) DO UPDATE
		SET phone = CASE WHEN EXCLUDED.phone <> '' THEN EXCLUDED.phone ELSE users.phone END
		RETURNING ` + userColumns
	user, err := scanUser(repo.db.QueryRow(ctx, query, openID, phone))
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) TouchLastLogin(ctx context.Context, userID int, at time.Time) error {
	_, err := repo.db.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", at, userID)
	if err != nil {
		zap.L().Error("can't update last login", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) SetRole(ctx context.Context, userID, role int) error {
	tag, err := repo.db.Exec(ctx, "UPDATE users SET role = $1 WHERE id = $2", role, userID)
	if err != nil {
		zap.L().Error("can't update user role", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", domain.ErrUserNotFound, userID)
	}
	return nil
}

// UpdatePromoter sets the referral flag and rate. A link already issued to the
// user is kept, so shared links stay valid; link is stored only when the user
// has none. A missing user returns nil.
func (repo *Repository) UpdatePromoter(ctx context.Context, id int, isPromoter bool, rate decimal.Decimal, link string) (*domain.Promoter, error) {
	query := `
		UPDATE users
		SET is_promoter = $1,
			commission_rate = $2::numeric,
			promotion_link = CASE WHEN promotion_link = '' THEN $3 ELSE promotion_link END
		WHERE id = $4
		RETURNING id, is_promoter, commission_rate::text, promotion_link
	`
	var (
		promoter domain.Promoter
		stored   string
	)
	err := repo.db.QueryRow(ctx, query, isPromoter, rate.String(), link, id).
		Scan(&promoter.UserID, &promoter.IsPromoter, &stored, &promoter.Link)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't update promoter", zap.Int("user_id", id), zap.Error(err))
		return nil, err
	}
	promoter.CommissionRate, err = decimal.NewFromString(stored)
	if err != nil {
		return nil, fmt.Errorf("parse commission rate %q: %w", stored, err)
	}
	return &promoter, nil
}

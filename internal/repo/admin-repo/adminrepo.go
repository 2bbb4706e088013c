package adminrepo

import (
	"context"
	"errors"

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

func (repo *Repository) FindByLogin(ctx context.Context, login string) (*domain.Admin, error) {
	var admin domain.Admin
	err := repo.db.QueryRow(ctx, "SELECT id, login, password_hash, created_at FROM admins WHERE login = $1", login).
		Scan(&admin.ID, &admin.Login, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find admin", zap.Error(err))
		return nil, err
	}
	return &admin, nil
}

// CreateIfAbsent reports whether a new admin row was written.
func (repo *Repository) CreateIfAbsent(ctx context.Context, login, passwordHash string) (bool, error) {
	tag, err := repo.db.Exec(ctx, `
		INSERT INTO admins (login, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (login) DO NOTHING
	`, login, passwordHash)
	if err != nil {
		zap.L().Error("can't save admin", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

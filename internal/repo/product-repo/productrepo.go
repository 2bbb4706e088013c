package productrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const productColumns = `id, code, name, price, level, enabled`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) find(ctx context.Context, where string, arg any) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE "+where, arg).
		Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Level, &p.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find product", zap.Any("key", arg), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// FindByID includes disabled products; callers decide whether that matters.
func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	return r.find(ctx, "id = $1", id)
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	return r.find(ctx, "code = $1", code)
}

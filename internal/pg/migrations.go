package pg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/GlebRadaev/memberhub/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies the embedded schema and seed migrations that are not
// yet recorded in the goose version table.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) (err error) {
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if e := db.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("close migration db: %w", e))
		}
	}()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("build migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		if r.Source == nil {
			continue
		}
		zap.L().Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("file", filepath.Base(r.Source.Path)),
			zap.Duration("took", r.Duration),
		)
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if len(results) == 0 {
		zap.L().Debug("schema is up to date")
	}
	return nil
}

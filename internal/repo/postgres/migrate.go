package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/migrations"
)

// Migrate — накатывает встроенные миграции goose поверх пула.
// Возвращает число применённых миграций; уже применённые пропускаются.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log ports.Logger) (int, error) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		log.Infof(ctx, "migration applied version=%d file=%s duration=%s", r.Source.Version, r.Source.Path, r.Duration)
	}
	if err != nil {
		return len(results), fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}

package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DemoSeedFile holds the demo profiles, contracts and jobs. It is applied only on request.
const DemoSeedFile = "seeds/demo.sql"

//go:embed seeds/demo.sql
var seedFS embed.FS

// Migrations lists the embedded migration files in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// RunMigrations applies the embedded SQL migrations. Every file is idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	names, err := Migrations()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for _, name := range names {
		content, err := migrationFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		logger.Info("applying migration", zap.String("file", name))
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(names)))
	return nil
}

// SeedDemo loads the demo dataset. Existing rows are left untouched.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping demo seed")
		return nil
	}

	content, err := seedFS.ReadFile(DemoSeedFile)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", DemoSeedFile, err)
	}
	logger.Info("seeding demo data", zap.String("file", DemoSeedFile))
	if _, err := pool.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("apply seed %s: %w", DemoSeedFile, err)
	}
	return nil
}

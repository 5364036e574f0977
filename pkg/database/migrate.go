package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration in file name order.
// All statements are idempotent so running it twice is harmless.
func Migrate(ctx context.Context, db PgxIface, log *zap.Logger) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := db.Exec(ctx, string(body)); err != nil {
			log.Error("Migration failed", zap.String("file", name), zap.Error(err))
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		log.Info("Migration applied", zap.String("file", name))
	}

	return nil
}

package pg

import (
	"context"
	"embed"
	"errors"

	"github.com/pressly/goose/v3"

	// Registers the "pgx" database/sql driver goose runs migrations over.
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrMigrationFailed is returned when applying the embedded schema
// migrations fails.
var ErrMigrationFailed = errors.New("failed to apply postgres migrations")

// Migrate applies the embedded schema migrations. Call once at startup,
// before the secret store is used.
func Migrate(ctx context.Context, connURL string) error {
	db, err := goose.OpenDBWithDriver("pgx", connURL)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	defer func() {
		_ = db.Close()
	}()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

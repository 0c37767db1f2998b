package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

func (g *Gateway) migrationProvider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations/"+string(g.dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	dialect := goose.DialectSQLite3
	if g.dialect == DialectPostgres {
		dialect = goose.DialectPostgres
	}

	provider, err := goose.NewProvider(dialect, g.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// CreateSchemaIfAbsent applies every pending migration. Safe on every startup.
func (g *Gateway) CreateSchemaIfAbsent(ctx context.Context) error {
	provider, err := g.migrationProvider()
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		g.log.Info(ctx, "migration applied", map[string]interface{}{
			"version":     r.Source.Version,
			"file":        r.Source.Path,
			"duration_ms": r.Duration.Milliseconds(),
		})
	}
	return nil
}

// SchemaVersion returns the latest applied migration version.
func (g *Gateway) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := g.migrationProvider()
	if err != nil {
		return 0, err
	}
	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// NewPostgres opens a pgx pool against databaseURL and applies pending
// migrations from migrationsURL (a file:// source) before returning.
func NewPostgres(ctx context.Context, databaseURL, migrationsURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	m, err := migrate.New(migrationsURL, migrateURL(databaseURL))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to init migration: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return pool, nil
}

// migrate selects its database driver by URL scheme; the pgx/v5 driver
// registers itself as pgx5.
func migrateURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql://") {
		return "pgx5://" + strings.TrimPrefix(databaseURL, "postgresql://")
	}
	return "pgx5://" + strings.TrimPrefix(databaseURL, "postgres://")
}

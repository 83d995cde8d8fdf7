package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"coursework_service/internal/errdefs"
)

// Querier is the pgxpool.Pool surface the repositories use, kept as an
// interface so a mock pool can stand in.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func handleError(err error) error {
	if isUniqueViolation(err) {
		return errdefs.ErrAlreadyExists
	}
	if isNotFound(err) {
		return errdefs.ErrNotFound
	}
	return fmt.Errorf("repository error: %w", err)
}

package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrEmptyConnectionURL is returned when the connection URL is empty.
	ErrEmptyConnectionURL = errors.New("empty postgres connection URL")
	// ErrConnectionFailed is returned when the pool cannot be established
	// or the server does not answer the readiness ping.
	ErrConnectionFailed = errors.New("failed to connect to postgres")
)

// Connect opens a pgx connection pool and verifies the server answers.
func Connect(ctx context.Context, connURL string) (*pgxpool.Pool, error) {
	if connURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return pool, nil
}

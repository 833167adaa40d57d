package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/motdlink/core/player"
)

// SecretStore implements player.SecretStore on the motd_player_secrets
// table.
type SecretStore struct {
	pool *pgxpool.Pool
}

// NewSecretStore creates a secret store over an established pool.
func NewSecretStore(pool *pgxpool.Pool) *SecretStore {
	return &SecretStore{pool: pool}
}

// LoadSecret implements player.SecretStore.
func (s *SecretStore) LoadSecret(ctx context.Context, identity string) ([]byte, error) {
	row := s.row(ctx, `SELECT secret FROM motd_player_secrets WHERE identity = $1`, identity)

	var secret []byte
	if err := row.Scan(&secret); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, player.ErrSecretNotFound
		}
		return nil, err
	}
	return secret, nil
}

// StoreSecret implements player.SecretStore.
func (s *SecretStore) StoreSecret(ctx context.Context, identity string, secret []byte) error {
	const q = `
		INSERT INTO motd_player_secrets (identity, secret, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (identity)
		DO UPDATE SET secret = EXCLUDED.secret, updated_at = now()`

	if tx, ok := TxFromContext(ctx); ok {
		_, err := tx.Exec(ctx, q, identity, secret)
		return err
	}
	_, err := s.pool.Exec(ctx, q, identity, secret)
	return err
}

func (s *SecretStore) row(ctx context.Context, q string, args ...any) pgx.Row {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.QueryRow(ctx, q, args...)
	}
	return s.pool.QueryRow(ctx, q, args...)
}

package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/motdlink/core/player"
)

const defaultKeyPrefix = "motd:secret:"

// SecretStore implements player.SecretStore on Redis strings, one key per
// player identity. Secrets have no expiration; they live until rotated.
type SecretStore struct {
	client    *redis.Client
	keyPrefix string
}

// SecretStoreOption configures a SecretStore.
type SecretStoreOption func(*SecretStore)

// WithKeyPrefix overrides the default "motd:secret:" key prefix.
func WithKeyPrefix(prefix string) SecretStoreOption {
	return func(s *SecretStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewSecretStore creates a secret store over an established client.
func NewSecretStore(client *redis.Client, opts ...SecretStoreOption) *SecretStore {
	s := &SecretStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// LoadSecret implements player.SecretStore.
func (s *SecretStore) LoadSecret(ctx context.Context, identity string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+identity).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, player.ErrSecretNotFound
		}
		return nil, errors.Join(ErrFailedToLoadSecret, err)
	}
	return val, nil
}

// StoreSecret implements player.SecretStore.
func (s *SecretStore) StoreSecret(ctx context.Context, identity string, secret []byte) error {
	if err := s.client.Set(ctx, s.keyPrefix+identity, secret, 0).Err(); err != nil {
		return errors.Join(ErrFailedToStoreSecret, err)
	}
	return nil
}

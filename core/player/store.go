package player

import "context"

// SecretStore persists the per-player rotating secret. Implementations must
// be safe for concurrent use; the bridge calls LoadSecret exactly once per
// player activation and StoreSecret on every rotation.
type SecretStore interface {
	// LoadSecret returns the stored secret for the identity, or
	// ErrSecretNotFound when the player never rotated one.
	LoadSecret(ctx context.Context, identity string) ([]byte, error)

	// StoreSecret durably replaces the secret for the identity.
	StoreSecret(ctx context.Context, identity string, secret []byte) error
}

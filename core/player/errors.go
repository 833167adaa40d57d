package player

import "errors"

var (
	// ErrNotReady is returned when an operation needs the rotating secret
	// before its background load has completed.
	ErrNotReady = errors.New("player: secret not loaded yet")
	// ErrUnknownSession is returned when a session id is not tracked.
	ErrUnknownSession = errors.New("player: unknown session")
	// ErrUnknownIdentity is returned when no player with the identity is
	// tracked.
	ErrUnknownIdentity = errors.New("player: unknown identity")
	// ErrSecretNotFound is returned by SecretStore implementations when no
	// record exists for the identity. The player treats it as a
	// never-rotated, empty secret.
	ErrSecretNotFound = errors.New("player: secret not found")
)

// Package player tracks per-player bridge state: the rotating secret, the
// monotonic session-id counter and the set of live sessions.
//
// A Player is constructed on player activation and destroyed on disconnect
// or level change. At most one of its sessions is authorized to exchange
// data at any instant: claiming a session for transmission supersedes and
// discards every other tracked session. Session ids are never reused within
// a player's lifetime.
//
// The rotating secret is loaded from the SecretStore on a background worker
// at activation; operations that depend on it fail with ErrNotReady until
// the load completes rather than silently signing with a stale secret.
// Rotation persists the new secret before mutating memory, so token
// derivation always agrees with durable state even under storage failure.
//
// Manager is the process-wide player dictionary keyed by identity.
package player

// Package token derives and verifies the one-time authentication tokens
// that tie a MOTD page view to one player, one page and one session.
//
// A token is a SHA-512 digest over the player's rotating personal secret,
// the installation identifier, the application and page identifiers, the
// player identity and the session id, keyed with a signing key expanded
// from the installation secret via HKDF. Two token flavors exist: one over
// the game-side rotating secret and one over the separately rotated
// web-side secret. Both use the same derivation; the caller picks the
// personal secret.
//
// Verification recomputes the digest and compares it in constant time.
// Malformed inputs never error, they simply fail to verify.
package token

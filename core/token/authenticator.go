package token

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"
)

var (
	// ErrMissingInstallationID is returned when the installation identifier is empty.
	ErrMissingInstallationID = errors.New("token: missing installation id")
	// ErrMissingSecret is returned when the installation secret is empty.
	ErrMissingSecret = errors.New("token: missing installation secret")
)

// Authenticator derives per-session authentication tokens for one
// installation. It is immutable and safe for concurrent use.
type Authenticator struct {
	installationID string
	signingKey     []byte
}

// New creates an authenticator for the given installation. The raw
// installation secret is expanded through HKDF-SHA512 into the signing key
// mixed into every digest, so the stored secret never participates in
// derivation directly.
func New(installationID string, secret []byte) (*Authenticator, error) {
	if installationID == "" {
		return nil, ErrMissingInstallationID
	}
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	key := make([]byte, sha512.Size)
	kdf := hkdf.New(sha512.New, secret, nil, []byte(installationID))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("token: derive signing key: %w", err)
	}

	return &Authenticator{
		installationID: installationID,
		signingKey:     key,
	}, nil
}

// Derive computes the token for the given inputs. personal is the player's
// rotating secret (game-side or web-side flavor); it is empty until the
// first rotation, which is a valid input. The result is a lowercase hex
// string of fixed length.
func (a *Authenticator) Derive(personal []byte, appID, identity, pageID string, sessionID uint64) string {
	h := sha512.New()
	h.Write(personal)
	io.WriteString(h, a.installationID)
	io.WriteString(h, appID)
	io.WriteString(h, identity)
	io.WriteString(h, pageID)
	io.WriteString(h, strconv.FormatUint(sessionID, 10))
	h.Write(a.signingKey)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether candidate matches the token derived from the same
// inputs. The comparison is constant-time.
func (a *Authenticator) Verify(candidate string, personal []byte, appID, identity, pageID string, sessionID uint64) bool {
	derived := a.Derive(personal, appID, identity, pageID, sessionID)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(derived)) == 1
}

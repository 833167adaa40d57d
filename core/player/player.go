package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/motdlink/core/logger"
	"github.com/dmitrymomot/motdlink/core/page"
	"github.com/dmitrymomot/motdlink/core/registry"
	"github.com/dmitrymomot/motdlink/core/session"
	"github.com/dmitrymomot/motdlink/core/token"
	"github.com/dmitrymomot/motdlink/pkg/async"
)

// Player owns every session of one connected identity plus the rotating
// secret used for token derivation. Construct via Manager.Activate.
type Player struct {
	identity string
	auth     *token.Authenticator
	store    SecretStore
	reg      *registry.Registry
	exchange page.ExchangeFunc
	log      *slog.Logger
	loadf    *async.ExecFuture

	mu            sync.Mutex
	secret        []byte
	ready         bool
	nextSessionID uint64
	claimGen      uint64
	sessions      map[uint64]*session.Session
}

func newPlayer(identity string, auth *token.Authenticator, store SecretStore, reg *registry.Registry, exchange page.ExchangeFunc, log *slog.Logger) *Player {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Player{
		identity:      identity,
		auth:          auth,
		store:         store,
		reg:           reg,
		exchange:      exchange,
		log:           log,
		nextSessionID: 1,
		sessions:      make(map[uint64]*session.Session),
	}
}

// Identity returns the stable player identity.
func (p *Player) Identity() string { return p.identity }

// Ready reports whether the persisted secret has been loaded.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// AwaitLoad blocks until the background secret load completes or the
// timeout elapses.
func (p *Player) AwaitLoad(timeout time.Duration) error {
	if p.loadf == nil {
		return nil
	}
	return p.loadf.AwaitWithTimeout(timeout)
}

// Load fetches the persisted secret and marks the player ready. A missing
// record means the player never rotated and signs with the empty secret.
func (p *Player) Load(ctx context.Context) error {
	secret, err := p.store.LoadSecret(ctx, p.identity)
	if err != nil && !errors.Is(err, ErrSecretNotFound) {
		p.log.Error("secret load failed",
			logger.Component("player"),
			logger.Player(p.identity),
			logger.Error(err),
		)
		return err
	}

	p.mu.Lock()
	p.secret = secret
	p.ready = true
	p.mu.Unlock()

	return nil
}

// CreateSession allocates the next session id and tracks a new session
// showing the described page. Fails with ErrNotReady until the secret load
// completed, because the page URL needs a trustworthy token.
func (p *Player) CreateSession(desc page.Descriptor) (*session.Session, error) {
	p.mu.Lock()
	if !p.ready {
		p.mu.Unlock()
		return nil, ErrNotReady
	}
	id := p.nextSessionID
	p.nextSessionID++
	p.mu.Unlock()

	// Built outside the lock: the page factory runs application code.
	s := session.New(p.reg, id, p.identity, desc,
		session.WithLogger(p.log),
		session.WithExchange(p.exchange),
	)

	p.mu.Lock()
	p.sessions[id] = s
	p.mu.Unlock()

	return s, nil
}

// ClaimForTransmission authorizes the session to exchange data and
// supersedes every other tracked session with ReasonTakenOver. Exactly one
// session remains tracked afterwards. The returned claim generation guards
// Release against stale connections.
func (p *Player) ClaimForTransmission(sessionID uint64) (*session.Session, uint64, error) {
	p.mu.Lock()
	s, ok := p.sessions[sessionID]
	if !ok {
		p.mu.Unlock()
		return nil, 0, ErrUnknownSession
	}

	superseded := make([]*session.Session, 0, len(p.sessions)-1)
	for id, other := range p.sessions {
		if id != sessionID {
			superseded = append(superseded, other)
		}
	}
	p.sessions = map[uint64]*session.Session{sessionID: s}
	p.claimGen++
	gen := p.claimGen
	p.mu.Unlock()

	// Best-effort notification outside the lock; Close swallows callback
	// failures, takeover proceeds regardless.
	for _, other := range superseded {
		other.Close(page.ReasonTakenOver)
	}

	return s, gen, nil
}

// CloseLive tears down the session's live channel after its connection
// terminated, unless a newer connection re-claimed the session and may have
// bound a live channel of its own. The session call runs without the player
// lock because it invokes application callbacks.
func (p *Player) CloseLive(sessionID, gen uint64, reason page.Reason) {
	p.mu.Lock()
	s, ok := p.sessions[sessionID]
	current := p.claimGen == gen
	p.mu.Unlock()

	if ok && current {
		s.CloseLive(reason)
	}
}

// Release discards the session after its connection terminated, unless a
// newer connection re-claimed it in the meantime.
func (p *Player) Release(sessionID, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.claimGen != gen {
		return
	}
	delete(p.sessions, sessionID)
}

// DiscardSession removes tracking without invoking any session hook.
func (p *Player) DiscardSession(sessionID uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, sessionID)
}

// CloseAll terminates every tracked session with the reason and clears
// tracking. Used on player disconnect and level change.
func (p *Player) CloseAll(reason page.Reason) {
	p.mu.Lock()
	closing := make([]*session.Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		closing = append(closing, s)
	}
	p.sessions = make(map[uint64]*session.Session)
	p.mu.Unlock()

	for _, s := range closing {
		s.Close(reason)
	}
}

// SessionCount returns the number of tracked sessions.
func (p *Player) SessionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// RotateSecret persists newSecret and, only on success, adopts it in
// memory. The store call is blocking I/O and deliberately runs without the
// player lock. Returns false when persistence fails, leaving the in-memory
// secret unchanged so a later rotation can retry.
func (p *Player) RotateSecret(ctx context.Context, newSecret []byte) bool {
	if err := p.store.StoreSecret(ctx, p.identity, newSecret); err != nil {
		p.log.Error("secret rotation rejected",
			logger.Component("player"),
			logger.Player(p.identity),
			logger.Error(err),
		)
		return false
	}

	p.mu.Lock()
	p.secret = newSecret
	p.mu.Unlock()

	return true
}

// IssueToken derives the authentication token for one page view using the
// current rotating secret. Fails with ErrNotReady before the secret load
// completes.
func (p *Player) IssueToken(appID, pageID string, sessionID uint64) (string, error) {
	p.mu.Lock()
	if !p.ready {
		p.mu.Unlock()
		return "", ErrNotReady
	}
	secret := p.secret
	p.mu.Unlock()

	return p.auth.Derive(secret, appID, p.identity, pageID, sessionID), nil
}

// VerifyToken checks a candidate token against the current rotating secret.
func (p *Player) VerifyToken(candidate, appID, pageID string, sessionID uint64) (bool, error) {
	p.mu.Lock()
	if !p.ready {
		p.mu.Unlock()
		return false, ErrNotReady
	}
	secret := p.secret
	p.mu.Unlock()

	return p.auth.Verify(candidate, secret, appID, p.identity, pageID, sessionID), nil
}

package player

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/motdlink/core/logger"
	"github.com/dmitrymomot/motdlink/core/page"
	"github.com/dmitrymomot/motdlink/core/registry"
	"github.com/dmitrymomot/motdlink/core/token"
	"github.com/dmitrymomot/motdlink/pkg/async"
)

// Manager is the process-wide player dictionary. It owns player lifecycle:
// activation with the background secret load, lookup by identity, and
// teardown on disconnect or level change.
type Manager struct {
	auth     *token.Authenticator
	store    SecretStore
	reg      *registry.Registry
	exchange page.ExchangeFunc
	log      *slog.Logger

	mu      sync.RWMutex
	players map[string]*Player
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger shared with players and sessions.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithExchange supplies the counterpart exchange capability handed to every
// page behavior instance.
func WithExchange(fn page.ExchangeFunc) ManagerOption {
	return func(m *Manager) {
		m.exchange = fn
	}
}

// NewManager creates an empty player dictionary.
func NewManager(auth *token.Authenticator, store SecretStore, reg *registry.Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		auth:    auth,
		store:   store,
		reg:     reg,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		players: make(map[string]*Player),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Activate returns the player for the identity, constructing it and
// launching the background secret load on first activation. Bots and other
// non-authenticatable identities are the caller's concern; the manager
// tracks whatever identity it is given.
func (m *Manager) Activate(ctx context.Context, identity string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[identity]; ok {
		return p
	}

	p := newPlayer(identity, m.auth, m.store, m.reg, m.exchange, m.log)
	p.loadf = async.Exec(ctx, p, func(ctx context.Context, p *Player) error {
		return p.Load(ctx)
	})
	m.players[identity] = p

	m.log.Info("player activated",
		logger.Component("player"),
		logger.Player(identity),
	)

	return p
}

// Get returns the tracked player for the identity.
func (m *Manager) Get(identity string) (*Player, error) {
	m.mu.RLock()
	p, ok := m.players[identity]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrUnknownIdentity
	}
	return p, nil
}

// Remove closes every session of the player with the reason and stops
// tracking it. Used on player disconnect.
func (m *Manager) Remove(identity string, reason page.Reason) {
	m.mu.Lock()
	p, ok := m.players[identity]
	delete(m.players, identity)
	m.mu.Unlock()

	if ok {
		p.CloseAll(reason)
	}
}

// Reset closes every player's sessions and clears the dictionary. Used on
// level change.
func (m *Manager) Reset(reason page.Reason) {
	m.mu.Lock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.players = make(map[string]*Player)
	m.mu.Unlock()

	for _, p := range players {
		p.CloseAll(reason)
	}
}

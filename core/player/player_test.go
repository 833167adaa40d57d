package player_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/motdlink/core/page"
	"github.com/dmitrymomot/motdlink/core/player"
	"github.com/dmitrymomot/motdlink/core/registry"
	"github.com/dmitrymomot/motdlink/core/token"
)

// fakeStore is an in-memory SecretStore with controllable failures.
type fakeStore struct {
	mu       sync.Mutex
	secrets  map[string][]byte
	loadErr  error
	storeErr error
	loadGate chan struct{} // when set, LoadSecret blocks until closed
}

func newFakeStore() *fakeStore {
	return &fakeStore{secrets: make(map[string][]byte)}
}

func (f *fakeStore) LoadSecret(ctx context.Context, identity string) ([]byte, error) {
	if f.loadGate != nil {
		select {
		case <-f.loadGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	secret, ok := f.secrets[identity]
	if !ok {
		return nil, player.ErrSecretNotFound
	}
	return secret, nil
}

func (f *fakeStore) StoreSecret(ctx context.Context, identity string, secret []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	f.secrets[identity] = secret
	return nil
}

// terminationPage records OnTerminated reasons, guarded because takeover
// closes sessions from another goroutine's claim.
type terminationPage struct {
	page.Base

	mu      sync.Mutex
	reasons []page.Reason
}

func (p *terminationPage) OnTerminated(reason page.Reason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reasons = append(p.reasons, reason)
}

func (p *terminationPage) recorded() []page.Reason {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]page.Reason(nil), p.reasons...)
}

type fixture struct {
	store *fakeStore
	reg   *registry.Registry
	mgr   *player.Manager
	pages []*terminationPage
	desc  page.Descriptor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	auth, err := token.New("srv-1", []byte("install-secret"))
	require.NoError(t, err)

	f := &fixture{
		store: newFakeStore(),
		reg:   registry.New(),
	}
	f.desc = page.Descriptor{
		AppID:  "arena",
		PageID: "scoreboard",
		New: func(page.Context) page.Behavior {
			p := &terminationPage{}
			f.pages = append(f.pages, p)
			return p
		},
	}
	require.NoError(t, f.reg.Register(f.desc))

	f.mgr = player.NewManager(auth, f.store, f.reg)
	return f
}

// activate returns a player whose background secret load has finished.
func (f *fixture) activate(t *testing.T, identity string) *player.Player {
	t.Helper()
	p := f.mgr.Activate(context.Background(), identity)
	require.NoError(t, p.AwaitLoad(time.Second))
	return p
}

func TestPlayer_ReadyGate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.loadGate = make(chan struct{})

	p := f.mgr.Activate(context.Background(), "id-1")
	require.False(t, p.Ready())

	_, err := p.CreateSession(f.desc)
	assert.ErrorIs(t, err, player.ErrNotReady)
	_, err = p.IssueToken("arena", "scoreboard", 1)
	assert.ErrorIs(t, err, player.ErrNotReady)
	_, err = p.VerifyToken("cafe", "arena", "scoreboard", 1)
	assert.ErrorIs(t, err, player.ErrNotReady)

	close(f.store.loadGate)
	require.NoError(t, p.AwaitLoad(time.Second))
	require.True(t, p.Ready())

	_, err = p.CreateSession(f.desc)
	require.NoError(t, err)
}

func TestPlayer_MissingSecretIsNotAnError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := f.activate(t, "id-1")

	// Never-rotated players sign with the empty secret.
	tok, err := p.IssueToken("arena", "scoreboard", 1)
	require.NoError(t, err)
	ok, err := p.VerifyToken(tok, "arena", "scoreboard", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlayer_LoadFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.loadErr = errors.New("store down")

	p := f.mgr.Activate(context.Background(), "id-1")
	err := p.AwaitLoad(time.Second)
	assert.ErrorContains(t, err, "store down")
	assert.False(t, p.Ready())
}

func TestPlayer_SessionIDsMonotonic(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := f.activate(t, "id-1")

	s1, err := p.CreateSession(f.desc)
	require.NoError(t, err)
	s2, err := p.CreateSession(f.desc)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s1.ID())
	assert.Equal(t, uint64(2), s2.ID())

	// ids are never reused, even after the session is gone
	p.DiscardSession(s2.ID())
	s3, err := p.CreateSession(f.desc)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), s3.ID())
}

func TestPlayer_ClaimForTransmission(t *testing.T) {
	t.Parallel()

	t.Run("supersedes_every_other_session", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")

		s1, err := p.CreateSession(f.desc)
		require.NoError(t, err)
		s2, err := p.CreateSession(f.desc)
		require.NoError(t, err)
		require.Equal(t, 2, p.SessionCount())

		claimed, gen, err := p.ClaimForTransmission(s2.ID())
		require.NoError(t, err)
		assert.Same(t, s2, claimed)
		assert.NotZero(t, gen)

		assert.Equal(t, 1, p.SessionCount())
		assert.True(t, s1.Closed())
		assert.False(t, s2.Closed())
		assert.Equal(t, []page.Reason{page.ReasonTakenOver}, f.pages[0].recorded())
	})

	t.Run("unknown_session", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")

		_, _, err := p.ClaimForTransmission(99)
		assert.ErrorIs(t, err, player.ErrUnknownSession)
	})

	t.Run("stale_live_teardown_is_ignored", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")

		liveDesc := page.Descriptor{
			AppID:  "arena",
			PageID: "chat",
			Live:   true,
			New:    func(page.Context) page.Behavior { return &terminationPage{} },
		}
		require.NoError(t, f.reg.Register(liveDesc))

		s, err := p.CreateSession(liveDesc)
		require.NoError(t, err)

		_, gen1, err := p.ClaimForTransmission(s.ID())
		require.NoError(t, err)

		// A newer connection re-claims and binds the live channel.
		_, gen2, err := p.ClaimForTransmission(s.ID())
		require.NoError(t, err)
		require.NoError(t, s.ActivateLive(func(page.Payload) error { return nil }, func() {}))

		p.CloseLive(s.ID(), gen1, page.ReasonTransmissionEnd)
		assert.True(t, s.LiveBound())

		p.CloseLive(s.ID(), gen2, page.ReasonTransmissionEnd)
		assert.False(t, s.LiveBound())
	})

	t.Run("stale_release_is_ignored", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")

		s, err := p.CreateSession(f.desc)
		require.NoError(t, err)

		_, gen1, err := p.ClaimForTransmission(s.ID())
		require.NoError(t, err)

		// A newer connection re-claims before the old one releases.
		_, gen2, err := p.ClaimForTransmission(s.ID())
		require.NoError(t, err)
		require.NotEqual(t, gen1, gen2)

		p.Release(s.ID(), gen1)
		assert.Equal(t, 1, p.SessionCount())

		p.Release(s.ID(), gen2)
		assert.Equal(t, 0, p.SessionCount())
	})
}

func TestPlayer_RotateSecret(t *testing.T) {
	t.Parallel()

	t.Run("persist_failure_keeps_old_tokens_valid", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")

		before, err := p.IssueToken("arena", "scoreboard", 1)
		require.NoError(t, err)

		f.store.storeErr = errors.New("write refused")
		assert.False(t, p.RotateSecret(context.Background(), []byte("fresh")))

		after, err := p.IssueToken("arena", "scoreboard", 1)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("success_invalidates_old_tokens", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")

		before, err := p.IssueToken("arena", "scoreboard", 1)
		require.NoError(t, err)

		require.True(t, p.RotateSecret(context.Background(), []byte("fresh")))

		ok, err := p.VerifyToken(before, "arena", "scoreboard", 1)
		require.NoError(t, err)
		assert.False(t, ok)

		after, err := p.IssueToken("arena", "scoreboard", 1)
		require.NoError(t, err)
		assert.NotEqual(t, before, after)

		// The persisted value matches what the player adopted.
		assert.Equal(t, []byte("fresh"), f.store.secrets["id-1"])
	})

	t.Run("persisted_secret_survives_reactivation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")
		require.True(t, p.RotateSecret(context.Background(), []byte("fresh")))

		tok, err := p.IssueToken("arena", "scoreboard", 1)
		require.NoError(t, err)

		f.mgr.Remove("id-1", page.ReasonPlayerDrop)
		p2 := f.activate(t, "id-1")

		ok, err := p2.VerifyToken(tok, "arena", "scoreboard", 1)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

// exchangePage answers requests by a nested round-trip to the counterpart.
type exchangePage struct {
	page.Base
	ctx page.Context
}

func (p *exchangePage) OnRequest(em page.Emitter, data page.Payload) error {
	reply, err := p.ctx.Exchange.Call(context.Background(), "whois", data)
	if err != nil {
		return err
	}
	return em.Emit(reply)
}

func TestManager_ExchangeCapability(t *testing.T) {
	t.Parallel()

	desc := page.Descriptor{
		AppID:  "arena",
		PageID: "profile",
		New: func(ctx page.Context) page.Behavior {
			return &exchangePage{ctx: ctx}
		},
	}

	newManager := func(t *testing.T, opts ...player.ManagerOption) *player.Manager {
		t.Helper()
		auth, err := token.New("srv-1", []byte("install-secret"))
		require.NoError(t, err)
		reg := registry.New()
		require.NoError(t, reg.Register(desc))
		return player.NewManager(auth, newFakeStore(), reg, opts...)
	}

	t.Run("nested_round_trip", func(t *testing.T) {
		t.Parallel()

		var gotAction string
		mgr := newManager(t, player.WithExchange(func(_ context.Context, action string, payload page.Payload) (page.Payload, error) {
			gotAction = action
			return page.Payload{"name": "Gordon", "asked": payload["id"]}, nil
		}))

		p := mgr.Activate(context.Background(), "id-1")
		require.NoError(t, p.AwaitLoad(time.Second))
		s, err := p.CreateSession(desc)
		require.NoError(t, err)

		answer, err := s.HandleRequest(page.Payload{"id": "id-2"})
		require.NoError(t, err)
		assert.Equal(t, "whois", gotAction)
		assert.Equal(t, page.Payload{"name": "Gordon", "asked": "id-2"}, answer)
	})

	t.Run("absent_capability", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t)

		p := mgr.Activate(context.Background(), "id-1")
		require.NoError(t, p.AwaitLoad(time.Second))
		s, err := p.CreateSession(desc)
		require.NoError(t, err)

		_, err = s.HandleRequest(page.Payload{})
		assert.ErrorIs(t, err, page.ErrNoExchange)
	})
}

func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("activate_is_idempotent", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p1 := f.mgr.Activate(context.Background(), "id-1")
		p2 := f.mgr.Activate(context.Background(), "id-1")
		assert.Same(t, p1, p2)
	})

	t.Run("get_unknown_identity", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.mgr.Get("ghost")
		assert.ErrorIs(t, err, player.ErrUnknownIdentity)
	})

	t.Run("remove_closes_sessions", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.activate(t, "id-1")
		s, err := p.CreateSession(f.desc)
		require.NoError(t, err)

		f.mgr.Remove("id-1", page.ReasonPlayerDrop)

		assert.True(t, s.Closed())
		assert.Equal(t, []page.Reason{page.ReasonPlayerDrop}, f.pages[0].recorded())
		_, err = f.mgr.Get("id-1")
		assert.ErrorIs(t, err, player.ErrUnknownIdentity)
	})

	t.Run("reset_clears_everyone", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		pa := f.activate(t, "id-a")
		pb := f.activate(t, "id-b")
		sa, err := pa.CreateSession(f.desc)
		require.NoError(t, err)
		sb, err := pb.CreateSession(f.desc)
		require.NoError(t, err)

		f.mgr.Reset(page.ReasonPlayerDrop)

		assert.True(t, sa.Closed())
		assert.True(t, sb.Closed())
		_, err = f.mgr.Get("id-a")
		assert.ErrorIs(t, err, player.ErrUnknownIdentity)
		_, err = f.mgr.Get("id-b")
		assert.ErrorIs(t, err, player.ErrUnknownIdentity)
	})
}

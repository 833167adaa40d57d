package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/motdlink/core/logger"
	"github.com/dmitrymomot/motdlink/core/page"
	"github.com/dmitrymomot/motdlink/core/registry"
)

// Session is one instantiation of a page flow for one player. It may span
// multiple connections and page switches. Construct with New; the zero
// value is not usable.
type Session struct {
	id       uint64
	identity string
	reg      *registry.Registry
	exchange page.ExchangeFunc
	log      *slog.Logger

	mu           sync.Mutex
	desc         page.Descriptor
	behavior     page.Behavior
	live         page.Behavior
	liveEligible bool
	closed       bool
}

// Option configures a session.
type Option func(*Session)

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithExchange supplies the counterpart exchange capability passed to every
// behavior instance the session builds.
func WithExchange(fn page.ExchangeFunc) Option {
	return func(s *Session) {
		s.exchange = fn
	}
}

// New creates a session showing the described page. The request/response
// behavior instance is built immediately; live eligibility is recorded but
// the live instance is only built on ActivateLive.
func New(reg *registry.Registry, id uint64, identity string, desc page.Descriptor, opts ...Option) *Session {
	s := &Session{
		id:       id,
		identity: identity,
		reg:      reg,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.installPage(desc)
	s.mu.Unlock()

	return s
}

// ID returns the per-player session id.
func (s *Session) ID() uint64 { return s.id }

// Identity returns the player identity the session belongs to.
func (s *Session) Identity() string { return s.identity }

// Descriptor returns the currently active page descriptor.
func (s *Session) Descriptor() page.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// LiveEligible reports whether the currently active page declares live
// support.
func (s *Session) LiveEligible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveEligible
}

// LiveBound reports whether a live instance is currently bound.
func (s *Session) LiveBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live != nil
}

// Closed reports whether the session reached its terminal state.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// installPage replaces the active page. Caller holds s.mu.
// The previous instance is discarded without a teardown hook and the
// already-bound live instance, if any, keeps running; both are inherited
// source behavior.
func (s *Session) installPage(desc page.Descriptor) {
	s.desc = desc
	s.liveEligible = desc.Live
	s.behavior = desc.New(page.Context{
		Identity: s.identity,
		Exchange: s.exchange,
	})
	s.callHook("on_activated", func() {
		s.behavior.OnActivated(s.identity)
	})
}

// ActivateLive builds the live behavior instance and binds it to the
// connection's push and stop callbacks. Fails with ErrLiveNotPermitted if
// the active page declares no live support.
func (s *Session) ActivateLive(send func(page.Payload) error, stop func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if !s.liveEligible {
		return ErrLiveNotPermitted
	}

	inst := s.desc.New(page.Context{
		Identity: s.identity,
		Live:     true,
		Exchange: s.exchange,
	})
	if b, ok := inst.(page.LiveBinder); ok {
		b.BindLive(&streamEmitter{send: send}, stop)
	}
	s.live = inst
	s.callHook("on_activated", func() {
		inst.OnActivated(s.identity)
	})

	return nil
}

// HandleRequest runs one request/response turn on the non-live instance.
// The returned payload is nil when the page emitted nothing. A failing
// callback surfaces as ErrPageCallback without closing the session.
func (s *Session) HandleRequest(data page.Payload) (page.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	em := &oneShotEmitter{}
	if err := s.callBoundary("on_request", func() error {
		return s.behavior.OnRequest(em, data)
	}); err != nil {
		return nil, err
	}

	return em.data, nil
}

// HandleLivePush delivers one inbound live message to the live instance.
// Callback failures surface as ErrPageCallback but never close the live
// channel; only transport-level failures do.
func (s *Session) HandleLivePush(data page.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.live == nil {
		return ErrLiveNotBound
	}

	return s.callBoundary("on_push_received", func() error {
		return s.live.OnPushReceived(data)
	})
}

// RequestSwitch resolves newPageID within the active page's application and
// replaces the active page if the current one accepts. Live eligibility is
// re-evaluated; an already-bound live instance is left running.
func (s *Session) RequestSwitch(newPageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	desc, err := s.reg.Lookup(s.desc.AppID, newPageID)
	if err != nil {
		return err
	}

	var allowed bool
	if err := s.callBoundary("on_switch_requested", func() error {
		allowed = s.behavior.OnSwitchRequested(newPageID)
		return nil
	}); err != nil {
		return err
	}
	if !allowed {
		return ErrSwitchRefused
	}

	s.installPage(desc)
	return nil
}

// Close terminates the session. Both behavior instances observe the reason
// exactly once; every later operation fails with ErrClosed. Closing twice
// is a no-op.
func (s *Session) Close(reason page.Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	s.callHook("on_terminated", func() {
		s.behavior.OnTerminated(reason)
	})
	if s.live != nil {
		live := s.live
		s.live = nil
		s.callHook("on_terminated", func() {
			live.OnTerminated(reason)
		})
	}
}

// CloseLive tears down only the live channel: the live instance observes
// the reason and is dropped while the request/response page stays active.
// A no-op when no live instance is bound.
func (s *Session) CloseLive(reason page.Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.live == nil {
		return
	}

	live := s.live
	s.live = nil
	s.callHook("on_terminated", func() {
		live.OnTerminated(reason)
	})
}

// callBoundary converts an error or panic from application callback code
// into ErrPageCallback, logging full diagnostic context. Caller holds s.mu.
func (s *Session) callBoundary(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("page callback panicked",
				logger.Component("session"),
				logger.Session(s.id),
				logger.Player(s.identity),
				logger.Page(s.desc.AppID, s.desc.PageID),
				logger.Action(op),
				slog.Any("panic", r),
			)
			err = fmt.Errorf("%w: %s: panic: %v", ErrPageCallback, op, r)
		}
	}()

	if callErr := fn(); callErr != nil {
		s.log.Error("page callback failed",
			logger.Component("session"),
			logger.Session(s.id),
			logger.Player(s.identity),
			logger.Page(s.desc.AppID, s.desc.PageID),
			logger.Action(op),
			logger.Error(callErr),
		)
		return errors.Join(ErrPageCallback, callErr)
	}
	return nil
}

// callHook runs a void callback, logging failures without propagating them.
func (s *Session) callHook(op string, fn func()) {
	_ = s.callBoundary(op, func() error {
		fn()
		return nil
	})
}

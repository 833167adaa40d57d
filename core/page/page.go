package page

import (
	"context"
	"sync"
)

// Payload is the opaque data exchanged between a page and its web
// counterpart. The core routes it without inspecting anything beyond the
// protocol envelope.
type Payload = map[string]any

// ExchangeFunc asks the counterpart side a question during a request turn.
// It is a nested synchronous round-trip, not a new protocol message; the
// collaborator that registers the application supplies it per connection.
type ExchangeFunc func(ctx context.Context, action string, payload Payload) (Payload, error)

// Call invokes the exchange. Behaviors should call through Call rather than
// invoking the func directly: a nil ExchangeFunc (no capability supplied)
// returns ErrNoExchange instead of panicking.
func (f ExchangeFunc) Call(ctx context.Context, action string, payload Payload) (Payload, error) {
	if f == nil {
		return nil, ErrNoExchange
	}
	return f(ctx, action, payload)
}

// Context carries everything a Factory needs to build a behavior instance.
type Context struct {
	// Identity is the stable identity of the player the page is shown to.
	Identity string

	// Live reports whether the instance being built is the live (push)
	// instance rather than the request/response one.
	Live bool

	// Exchange is the optional counterpart exchange capability. Nil when
	// the counterpart offers none.
	Exchange ExchangeFunc
}

// Factory builds one behavior instance. It is called once per session for
// the request/response instance and once more if the live channel is
// activated.
type Factory func(Context) Behavior

// Descriptor identifies a page and declares its capabilities.
type Descriptor struct {
	// AppID is the owning application identifier.
	AppID string

	// PageID is unique within the application.
	PageID string

	// Live declares that the page supports a live push sub-channel.
	Live bool

	// New builds behavior instances for this page.
	New Factory
}

// Emitter sends data from a page back to the client. The session chooses
// the emitter's mode: one-shot for request turns, streaming for the live
// instance.
type Emitter interface {
	Emit(data Payload) error
}

// Behavior is the per-instance page logic supplied by applications.
// Implementations usually embed Base and override what they need.
type Behavior interface {
	// OnActivated runs once right after the instance is created.
	OnActivated(identity string)

	// OnRequest handles one request/response turn on the non-live instance.
	// At most one Emit on em is allowed; the emitted payload becomes the
	// answer. Returning an error (or panicking) surfaces to the caller as a
	// page-callback failure without closing the session.
	OnRequest(em Emitter, data Payload) error

	// OnPushReceived handles one inbound live message on the live instance.
	OnPushReceived(data Payload) error

	// OnSwitchRequested decides whether a switch away to newPageID is
	// accepted.
	OnSwitchRequested(newPageID string) bool

	// OnTerminated runs when the session or the live channel ends
	// abnormally.
	OnTerminated(reason Reason)
}

// LiveBinder is implemented by behaviors that want the persistent push
// capability. The session binds the live instance right after building it.
// Base implements it; hand-rolled behaviors rarely need to.
type LiveBinder interface {
	BindLive(em Emitter, stop func())
}

// Base provides no-op defaults for every Behavior callback and carries the
// live push capability. Embed it by pointer.
type Base struct {
	mu   sync.Mutex
	live Emitter
	stop func()
}

func (b *Base) OnActivated(identity string)            {}
func (b *Base) OnRequest(em Emitter, data Payload) error { return nil }
func (b *Base) OnPushReceived(data Payload) error      { return nil }
func (b *Base) OnSwitchRequested(newPageID string) bool { return true }
func (b *Base) OnTerminated(reason Reason)             {}

// BindLive grants this instance the persistent push capability.
// Called by the session when the live channel is activated.
func (b *Base) BindLive(em Emitter, stop func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.live = em
	b.stop = stop
}

// Push sends data over the live channel. Only the bound live instance may
// push; the request/response instance answers through the Emitter passed to
// OnRequest instead.
func (b *Base) Push(data Payload) error {
	b.mu.Lock()
	em := b.live
	b.mu.Unlock()

	if em == nil {
		return ErrNotLiveInstance
	}
	return em.Emit(data)
}

// StopLive asks the connection to end the live transmission.
func (b *Base) StopLive() error {
	b.mu.Lock()
	stop := b.stop
	b.mu.Unlock()

	if stop == nil {
		return ErrNotLiveInstance
	}
	stop()
	return nil
}

// Package page defines the contract between the bridge core and
// application-supplied page logic.
//
// A page is a named, application-scoped content unit shown to a player.
// Applications describe each page with a Descriptor and implement its logic
// as a Behavior. The session layer instantiates a Behavior per session: one
// request/response instance, and, when the page declares live support and
// the client activates it, a second live instance with its own callback
// wiring. The two instances share the logical page identity but never an
// object.
//
// Behaviors send data back through an Emitter. The session decides which
// kind of emitter a call receives: a one-shot emitter for each OnRequest
// turn (a second Emit within the same turn fails with ErrAlreadyEmitted),
// or a stream emitter bound to the live instance for the lifetime of the
// live channel. Embedding Base gives no-op defaults for every callback plus
// the Push capability for live instances.
//
// Basic usage:
//
//	type scoreboard struct {
//		page.Base
//	}
//
//	func (p *scoreboard) OnRequest(em page.Emitter, data page.Payload) error {
//		return em.Emit(page.Payload{"scores": currentScores()})
//	}
//
//	desc := page.Descriptor{
//		AppID:  "arena",
//		PageID: "scoreboard",
//		New:    func(page.Context) page.Behavior { return &scoreboard{} },
//	}
package page

// Package session implements the per-activation state machine that owns a
// page behavior instance and mediates every exchange with it.
//
// A session is created when a page is sent to a player and moves through
// Active(page) -> Switching -> Active(new page) -> ... -> Closed. It owns
// exactly one request/response behavior instance plus, once the live
// channel is activated, one live instance. All behavior callbacks run
// through a recovery boundary: an application panic or error never unwinds
// into the core's state machine, it is logged and surfaced as
// ErrPageCallback.
//
// Within one session, request and push turns are strictly sequential; the
// session serializes them with its own mutex, matching the guarantee that
// each session is claimed by at most one connection at a time.
package session

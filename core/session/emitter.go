package session

import (
	"github.com/dmitrymomot/motdlink/core/page"
)

// oneShotEmitter captures at most one answer per request turn. A second
// emit within the same turn is an application bug surfaced as
// page.ErrAlreadyEmitted. Not safe for concurrent use; a turn runs under
// the session mutex.
type oneShotEmitter struct {
	emitted bool
	data    page.Payload
}

func (e *oneShotEmitter) Emit(data page.Payload) error {
	if e.emitted {
		return page.ErrAlreadyEmitted
	}
	e.emitted = true
	e.data = data
	return nil
}

// streamEmitter forwards every emit to the connection's push callback. It
// is handed to the live instance at bind time and stays valid until the
// live channel is torn down.
type streamEmitter struct {
	send func(page.Payload) error
}

func (e *streamEmitter) Emit(data page.Payload) error {
	return e.send(data)
}

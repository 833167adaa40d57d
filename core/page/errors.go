package page

import "errors"

var (
	// ErrNotLiveInstance is returned when Push or StopLive is called on a
	// behavior instance that has no live channel bound (the request/response
	// instance, or a live instance before the session binds it).
	ErrNotLiveInstance = errors.New("page: not a live instance")
	// ErrAlreadyEmitted is returned when a behavior emits more than once
	// within a single request turn.
	ErrAlreadyEmitted = errors.New("page: answer already emitted this turn")
	// ErrNoExchange is returned when a behavior calls Exchange but the
	// counterpart side supplied no exchange capability.
	ErrNoExchange = errors.New("page: no exchange capability")
)

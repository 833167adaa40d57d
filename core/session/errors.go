package session

import "errors"

var (
	// ErrClosed is returned by any operation on a closed session.
	ErrClosed = errors.New("session: closed")
	// ErrLiveNotPermitted is returned when live activation is requested but
	// the current page does not declare live support.
	ErrLiveNotPermitted = errors.New("session: live channel not permitted")
	// ErrLiveNotBound is returned when a live push arrives before the live
	// channel was activated.
	ErrLiveNotBound = errors.New("session: live channel not bound")
	// ErrSwitchRefused is returned when the current page rejects a switch.
	ErrSwitchRefused = errors.New("session: switch refused")
	// ErrPageCallback wraps any error or panic escaping a page behavior
	// callback. It closes neither the session nor the live channel.
	ErrPageCallback = errors.New("session: page callback failed")
)

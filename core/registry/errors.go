package registry

import "errors"

var (
	// ErrInvalidDescriptor is returned when a descriptor misses an
	// application id, a page id or a factory.
	ErrInvalidDescriptor = errors.New("registry: invalid page descriptor")
	// ErrDuplicatePage is returned when the (application id, page id) pair
	// is already registered.
	ErrDuplicatePage = errors.New("registry: page already registered")
	// ErrUnknownApplication is returned when no page of the application is
	// registered.
	ErrUnknownApplication = errors.New("registry: unknown application")
	// ErrUnknownPage is returned when the application exists but the page
	// does not.
	ErrUnknownPage = errors.New("registry: unknown page")
)

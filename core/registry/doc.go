// Package registry maps (application id, page id) pairs to page
// descriptors.
//
// The registry is an explicit object constructed at startup and injected
// into the dispatcher and the application-loading collaborator; there is no
// package-level singleton. Registration happens while applications load and
// is mutually exclusive with lookups; after startup the registry is
// read-mostly.
package registry

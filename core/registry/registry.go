package registry

import (
	"fmt"
	"sync"

	"github.com/dmitrymomot/motdlink/core/page"
)

// Registry holds the process-wide page mapping. The zero value is not
// usable; construct with New.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]map[string]page.Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		apps: make(map[string]map[string]page.Descriptor),
	}
}

// Register adds a page descriptor. Both identifiers must be non-empty and
// the factory non-nil; the (application id, page id) pair must be unused.
func (r *Registry) Register(desc page.Descriptor) error {
	if desc.AppID == "" || desc.PageID == "" || desc.New == nil {
		return ErrInvalidDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pages, ok := r.apps[desc.AppID]
	if !ok {
		pages = make(map[string]page.Descriptor)
		r.apps[desc.AppID] = pages
	}

	if _, exists := pages[desc.PageID]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicatePage, desc.AppID, desc.PageID)
	}

	pages[desc.PageID] = desc
	return nil
}

// Lookup resolves a page descriptor. Unknown applications and unknown pages
// fail with distinct errors for diagnostics.
func (r *Registry) Lookup(appID, pageID string) (page.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pages, ok := r.apps[appID]
	if !ok {
		return page.Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownApplication, appID)
	}

	desc, ok := pages[pageID]
	if !ok {
		return page.Descriptor{}, fmt.Errorf("%w: %s/%s", ErrUnknownPage, appID, pageID)
	}

	return desc, nil
}

// UnregisterAll removes every page of the application. Used when an
// application unit is unloaded; removing an unknown application is a no-op.
func (r *Registry) UnregisterAll(appID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.apps, appID)
}

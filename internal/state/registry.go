// Package state holds the process-wide filesystem registry.
//
// Native callbacks carry no state of their own, so the filesystem instance
// they serve is looked up here by its concrete type. At most one instance per
// type is reachable at a time.
package state

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"fusebridge/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("state")

	// ErrNotRegistered is returned by Get when no instance is registered for
	// the requested type, either because Register was never called or because
	// the registry was cleared after a panic.
	ErrNotRegistered = errors.New("filesystem not registered (registry corrupted?)")

	defaultRegistry = NewRegistry()
)

// Registry maps a concrete type to its single live instance.
type Registry struct {
	entries map[reflect.Type]any
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]any)}
}

// Register stores instance under its type, replacing any previous entry.
func (r *Registry) Register(key reflect.Type, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, replaced := r.entries[key]; replaced {
		logger.Warn("Replacing registered instance of %s", key)
	} else {
		logger.Debug("Registering instance of %s", key)
	}
	r.entries[key] = instance
}

// Lookup returns the instance registered under key.
func (r *Registry) Lookup(key reflect.Type) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, ok := r.entries[key]
	if !ok {
		return nil, fmt.Errorf("state lookup for `%s` failed: %w", key, ErrNotRegistered)
	}
	return instance, nil
}

// Clear drops every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Warn("Clearing registry (%d entries)", len(r.entries))
	clear(r.entries)
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Register stores fs in the process-wide registry under FS.
func Register[FS any](fs FS) {
	defaultRegistry.Register(reflect.TypeOf((*FS)(nil)).Elem(), fs)
}

// Get returns the instance registered under FS.
func Get[FS any]() (FS, error) {
	var zero FS
	instance, err := defaultRegistry.Lookup(reflect.TypeOf((*FS)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	fs, ok := instance.(FS)
	if !ok {
		return zero, fmt.Errorf("state entry for `%s` holds %T: %w", reflect.TypeOf((*FS)(nil)).Elem(), instance, ErrNotRegistered)
	}
	return fs, nil
}

// Clear empties the process-wide registry. It is called after a panic in
// user code; afterwards every Get fails until a new Register.
func Clear() {
	defaultRegistry.Clear()
}

// Len returns the number of entries in the process-wide registry.
func Len() int {
	return defaultRegistry.Len()
}

// TypeName returns the name FS is registered under, for diagnostics.
func TypeName[FS any]() string {
	return reflect.TypeOf((*FS)(nil)).Elem().String()
}

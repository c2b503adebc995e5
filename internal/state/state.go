// Package state holds application-managed values keyed by their Go type.
//
// Values are registered while the application is being built and read
// concurrently by command handlers afterwards.
package state

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrStateAlreadyManaged is returned when a second value of a type is
// registered.
var ErrStateAlreadyManaged = errors.New("state already managed")

// ErrStateNotManaged is returned by Get for an unregistered type.
var ErrStateNotManaged = errors.New("state not managed")

// Manager is a type-keyed store. Each concrete type may be set once.
type Manager struct {
	mu     sync.RWMutex
	values map[reflect.Type]any
}

func NewManager() *Manager {
	return &Manager{values: make(map[reflect.Type]any)}
}

// Set registers v under its dynamic type. Registering a pointer and a
// value of the same struct counts as two distinct types.
func (m *Manager) Set(v any) error {
	if v == nil {
		return fmt.Errorf("cannot manage nil state")
	}
	t := reflect.TypeOf(v)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.values[t]; exists {
		return fmt.Errorf("state for type %q: %w", t, ErrStateAlreadyManaged)
	}
	m.values[t] = v
	return nil
}

// Types returns the registered types in no particular order.
func (m *Manager) Types() []reflect.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]reflect.Type, 0, len(m.values))
	for t := range m.values {
		out = append(out, t)
	}
	return out
}

func (m *Manager) lookup(t reflect.Type) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[t]
	return v, ok
}

// Get returns the value managed for T.
func Get[T any](m *Manager) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := m.lookup(t)
	if !ok {
		return zero, fmt.Errorf("state for type %q: %w", t, ErrStateNotManaged)
	}
	return v.(T), nil
}

// MustGet is like Get but panics when T is not managed.
func MustGet[T any](m *Manager) T {
	v, err := Get[T](m)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether a value of type T is managed.
func Has[T any](m *Manager) bool {
	_, ok := m.lookup(reflect.TypeOf((*T)(nil)).Elem())
	return ok
}

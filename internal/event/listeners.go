// Package event is the in-process publish/subscribe registry behind
// listen, once and trigger.
package event

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mattjoyce/webshell/internal/tag"
)

// HandlerID identifies a registration for later removal.
type HandlerID string

// Event is what a handler receives.
type Event struct {
	ID   HandlerID
	Name tag.Event
	// Data is the raw payload, nil when the trigger carried none.
	Data *string
}

// Payload returns the data or the empty string.
func (e Event) Payload() string {
	if e.Data == nil {
		return ""
	}
	return *e.Data
}

// Handler is invoked on the triggering goroutine.
type Handler func(Event)

type registration struct {
	id    HandlerID
	event tag.Event
	scope tag.Label
	once  bool
	fn    Handler
}

// Listeners is a registry of event handlers keyed by event name and
// optional window scope. A zero scope means global.
type Listeners struct {
	mu       sync.Mutex
	handlers map[tag.Event][]*registration
	byID     map[HandlerID]*registration
}

func NewListeners() *Listeners {
	return &Listeners{
		handlers: make(map[tag.Event][]*registration),
		byID:     make(map[HandlerID]*registration),
	}
}

// Listen registers fn until it is removed with Unlisten.
func (l *Listeners) Listen(event tag.Event, scope tag.Label, fn Handler) HandlerID {
	return l.add(event, scope, fn, false)
}

// Once registers fn for a single delivery.
func (l *Listeners) Once(event tag.Event, scope tag.Label, fn Handler) HandlerID {
	return l.add(event, scope, fn, true)
}

func (l *Listeners) add(event tag.Event, scope tag.Label, fn Handler, once bool) HandlerID {
	reg := &registration{
		id:    HandlerID(uuid.NewString()),
		event: event,
		scope: scope,
		once:  once,
		fn:    fn,
	}

	l.mu.Lock()
	l.handlers[event] = append(l.handlers[event], reg)
	l.byID[reg.id] = reg
	l.mu.Unlock()

	return reg.id
}

// Unlisten removes a registration. It reports whether id was registered.
func (l *Listeners) Unlisten(id HandlerID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.byID[id]
	if !ok {
		return false
	}
	l.removeLocked(reg)
	return true
}

// Has reports whether id is still registered.
func (l *Listeners) Has(id HandlerID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.byID[id]
	return ok
}

// Len returns the number of live registrations.
func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}

// Trigger delivers data to every matching handler in registration order
// and returns how many were called. A global trigger (zero scope) reaches
// all handlers for the event; a scoped trigger reaches handlers registered
// for that window and global handlers.
//
// One-shot registrations are removed under the lock before any handler
// runs, so concurrent triggers cannot deliver them twice.
func (l *Listeners) Trigger(event tag.Event, scope tag.Label, data *string) int {
	l.mu.Lock()
	var matched []*registration
	for _, reg := range l.handlers[event] {
		if scope.IsZero() || reg.scope.IsZero() || reg.scope == scope {
			matched = append(matched, reg)
		}
	}
	for _, reg := range matched {
		if reg.once {
			l.removeLocked(reg)
		}
	}
	l.mu.Unlock()

	for _, reg := range matched {
		reg.fn(Event{ID: reg.id, Name: event, Data: data})
	}
	return len(matched)
}

func (l *Listeners) removeLocked(reg *registration) {
	delete(l.byID, reg.id)
	list := l.handlers[reg.event]
	for i, r := range list {
		if r == reg {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(l.handlers, reg.event)
		return
	}
	l.handlers[reg.event] = list
}

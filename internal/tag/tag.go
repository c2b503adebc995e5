// Package tag defines the identifiers used as keys throughout the shell:
// window labels and event names.
//
// Both are plain strings underneath, so they are hashable, comparable and
// totally ordered. Parsing validates the character set; the Must variants
// panic and are meant for identifiers that come from static configuration.
package tag

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ReservedPrefix marks event names owned by the shell itself.
const ReservedPrefix = "tauri://"

// WindowCreated is emitted to every other window after a window is created
// from script.
const WindowCreated Event = "tauri://window-created"

// Events re-emitted for native window and file drop activity.
const (
	WindowResize         Event = "tauri://resize"
	WindowMove           Event = "tauri://move"
	WindowCloseRequested Event = "tauri://close-requested"
	WindowDestroyed      Event = "tauri://destroyed"
	WindowFocus          Event = "tauri://focus"
	WindowBlur           Event = "tauri://blur"
	WindowScaleChange    Event = "tauri://scale-change"
	FileDrop             Event = "tauri://file-drop"
	FileDropHover        Event = "tauri://file-drop-hover"
	FileDropCancelled    Event = "tauri://file-drop-cancelled"
)

var (
	ErrEmpty       = errors.New("identifier is empty")
	ErrInvalidChar = errors.New("identifier contains an invalid character")
)

// Label identifies a window. It is the sole source of window identity.
// The zero value is not a valid label; APIs that take an optional window
// scope treat it as "no window".
type Label string

// Event identifies a named event.
type Event string

// ParseLabel validates s as a window label.
func ParseLabel(s string) (Label, error) {
	if err := validate(s, isLabelRune); err != nil {
		return "", fmt.Errorf("invalid window label %q: %w", s, err)
	}
	return Label(s), nil
}

// MustLabel is like ParseLabel but panics on invalid input.
func MustLabel(s string) Label {
	l, err := ParseLabel(s)
	if err != nil {
		panic(err)
	}
	return l
}

// ParseEvent validates s as an event name.
func ParseEvent(s string) (Event, error) {
	if err := validate(s, isEventRune); err != nil {
		return "", fmt.Errorf("invalid event name %q: %w", s, err)
	}
	return Event(s), nil
}

// MustEvent is like ParseEvent but panics on invalid input.
func MustEvent(s string) Event {
	e, err := ParseEvent(s)
	if err != nil {
		panic(err)
	}
	return e
}

func validate(s string, ok func(rune) bool) error {
	if s == "" {
		return ErrEmpty
	}
	for _, r := range s {
		if !ok(r) {
			return fmt.Errorf("%w: %q", ErrInvalidChar, r)
		}
	}
	return nil
}

func isLabelRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '/', r == ':':
		return true
	}
	return false
}

func isEventRune(r rune) bool {
	return isLabelRune(r) || r == '.'
}

func (l Label) String() string { return string(l) }

// IsZero reports whether l is the empty "no window" label.
func (l Label) IsZero() bool { return l == "" }

// Compare orders labels lexically. It returns -1, 0 or +1.
func (l Label) Compare(other Label) int { return strings.Compare(string(l), string(other)) }

// JSString returns l as a quoted script string literal.
func (l Label) JSString() string { return jsString(string(l)) }

func (e Event) String() string { return string(e) }

// Compare orders events lexically. It returns -1, 0 or +1.
func (e Event) Compare(other Event) int { return strings.Compare(string(e), string(other)) }

// JSString returns e as a quoted script string literal.
func (e Event) JSString() string { return jsString(string(e)) }

// IsReserved reports whether e belongs to the shell's own namespace.
func (e Event) IsReserved() bool { return strings.HasPrefix(string(e), ReservedPrefix) }

// UnmarshalJSON validates labels decoded from script payloads.
func (l *Label) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalJSON validates event names decoded from script payloads.
func (e *Event) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseEvent(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func jsString(s string) string {
	// json.Marshal on a string cannot fail.
	b, _ := json.Marshal(s)
	return string(b)
}

// Package ipc implements the invoke wire protocol between a window's
// script context and the host: payload decoding, callback formatting and
// the one-shot resolver.
package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// InitializedCommand is the page-load lifecycle signal.
const InitializedCommand = "__initialized"

// PluginPrefix namespaces commands routed to plugins.
const PluginPrefix = "plugin:"

// ListenersVar is the window global holding script-side event listeners,
// keyed by event name.
const ListenersVar = "__TAURI_EVENT_LISTENERS__"

var (
	ErrInvalidPayload  = errors.New("invalid invoke payload")
	ErrMissingCommand  = errors.New("missing cmd")
	ErrMissingCallback = errors.New("missing callback or error id")
)

var callbackIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// CallbackID names a script-side callback. Scripts send it as a number or
// a string.
type CallbackID string

func (c *CallbackID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = CallbackID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("callback id must be a number or string")
	}
	if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
		return fmt.Errorf("callback id must be a non-negative integer: %s", n)
	}
	*c = CallbackID(n.String())
	return nil
}

// Valid reports whether c is safe to splice into a script.
func (c CallbackID) Valid() bool {
	return callbackIDPattern.MatchString(string(c))
}

// Payload is a decoded invoke message.
type Payload struct {
	Command  string     `json:"cmd"`
	Callback CallbackID `json:"callback"`
	Error    CallbackID `json:"error"`
	// Module selects a built-in endpoint module when non-empty.
	Module     string `json:"__tauriModule,omitempty"`
	MainThread bool   `json:"mainThread,omitempty"`
	// Inner is the full message object, command-specific fields included.
	Inner json.RawMessage `json:"-"`
}

// DecodePayload parses and validates a raw invoke message.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Command == "" {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, ErrMissingCommand)
	}
	if p.Command != InitializedCommand {
		if p.Callback == "" || p.Error == "" {
			return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, ErrMissingCallback)
		}
		if !p.Callback.Valid() || !p.Error.Valid() {
			return Payload{}, fmt.Errorf("%w: malformed callback id", ErrInvalidPayload)
		}
	}
	p.Inner = append(json.RawMessage(nil), raw...)
	return p, nil
}

// PageLoadPayload accompanies the __initialized signal.
type PageLoadPayload struct {
	URL string `json:"url"`
}

// DecodePageLoad extracts the page-load payload from an __initialized
// message.
func DecodePageLoad(p Payload) (PageLoadPayload, error) {
	var out PageLoadPayload
	if err := json.Unmarshal(p.Inner, &out); err != nil {
		return PageLoadPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return out, nil
}

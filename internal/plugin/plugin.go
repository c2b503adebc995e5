// Package plugin defines the extension surface of the shell: plugins
// contribute setup logic, window-side scripts, lifecycle hooks and a
// namespaced set of invoke commands.
package plugin

import (
	"encoding/json"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/event"
	"github.com/mattjoyce/webshell/internal/ipc"
	"github.com/mattjoyce/webshell/internal/tag"
)

// Window is the view of a managed window that plugins get.
type Window interface {
	Label() tag.Label
	Eval(script string) error
	Emit(event tag.Event, payload any) error
}

// Invoke is a single plugin command call.
type Invoke interface {
	// Command is the full command name, e.g. "plugin:store|get".
	Command() string
	Payload() json.RawMessage
	Window() Window
	Resolve(v any) error
	Reject(v any) error
}

// Host is the running application as seen from a plugin during setup.
type Host interface {
	Config() *config.Config
	Manage(v any) error
	EmitAll(event tag.Event, payload any) error
	Listen(event tag.Event, handler event.Handler) event.HandlerID
}

// Plugin extends the application.
type Plugin interface {
	Name() string
	// Initialize runs once at startup, in registration order. An error
	// aborts startup.
	Initialize(host Host, config json.RawMessage) error
	// InitializationScript is injected into every window before page
	// scripts run.
	InitializationScript() string
	// Created is called after a window is attached.
	Created(window Window)
	// OnPageLoad is called when a window finishes loading a page.
	OnPageLoad(window Window, payload ipc.PageLoadPayload)
	// ExtendAPI handles "plugin:<name>|<cmd>" invokes.
	ExtendAPI(invoke Invoke)
}

// Base implements every Plugin hook as a no-op. Embed it and override
// what the plugin needs.
type Base struct{}

func (Base) Initialize(Host, json.RawMessage) error { return nil }

func (Base) InitializationScript() string { return "" }

func (Base) Created(Window) {}

func (Base) OnPageLoad(Window, ipc.PageLoadPayload) {}

func (Base) ExtendAPI(invoke Invoke) {
	_ = invoke.Reject("plugin does not handle commands")
}

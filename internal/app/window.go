package app

import (
	"encoding/json"
	"fmt"

	"github.com/mattjoyce/webshell/internal/event"
	"github.com/mattjoyce/webshell/internal/plugin"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

// Window is a window attached to a Manager. Two handles with the same
// label refer to the same window.
type Window struct {
	label      tag.Label
	dispatcher runtime.Dispatch
	manager    *Manager
}

var _ plugin.Window = (*Window)(nil)

func (w *Window) Label() tag.Label { return w.label }

func (w *Window) Dispatcher() runtime.Dispatch { return w.dispatcher }

func (w *Window) Manager() *Manager { return w.manager }

// Equal compares by label only.
func (w *Window) Equal(other *Window) bool {
	return other != nil && w.label == other.label
}

// Eval runs script in the window's webview.
func (w *Window) Eval(script string) error { return w.dispatcher.EvalScript(script) }

// Emit sends event to this window's script listeners.
func (w *Window) Emit(ev tag.Event, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", ev, err)
	}
	return w.emitRaw(ev, data)
}

func (w *Window) emitRaw(ev tag.Event, payload json.RawMessage) error {
	return w.dispatcher.EvalScript(w.manager.emitScript(ev, payload))
}

// EmitOthers sends event to every other attached window.
func (w *Window) EmitOthers(ev tag.Event, payload any) error {
	return w.manager.EmitOthers(w.label, ev, payload)
}

// Listen registers a host-side handler for event triggered by this window.
func (w *Window) Listen(ev tag.Event, handler event.Handler) event.HandlerID {
	return w.manager.Listen(ev, w.label, handler)
}

// Once is Listen for a single delivery.
func (w *Window) Once(ev tag.Event, handler event.Handler) event.HandlerID {
	return w.manager.Once(ev, w.label, handler)
}

// Trigger fires host-side handlers scoped to this window and global ones.
func (w *Window) Trigger(ev tag.Event, data *string) {
	w.manager.Trigger(ev, w.label, data)
}

// CreateWindow creates and attaches a sibling window.
func (w *Window) CreateWindow(pending runtime.PendingWindow) (*Window, error) {
	return w.manager.createWindow(w.dispatcher.CreateWindow, pending)
}

func (w *Window) ScaleFactor() (float64, error) { return w.dispatcher.ScaleFactor() }

func (w *Window) InnerPosition() (runtime.PhysicalPosition, error) {
	return w.dispatcher.InnerPosition()
}

func (w *Window) OuterPosition() (runtime.PhysicalPosition, error) {
	return w.dispatcher.OuterPosition()
}

func (w *Window) InnerSize() (runtime.PhysicalSize, error) { return w.dispatcher.InnerSize() }

func (w *Window) OuterSize() (runtime.PhysicalSize, error) { return w.dispatcher.OuterSize() }

func (w *Window) IsFullscreen() (bool, error) { return w.dispatcher.IsFullscreen() }

func (w *Window) IsMaximized() (bool, error) { return w.dispatcher.IsMaximized() }

func (w *Window) CurrentMonitor() (*runtime.Monitor, error) { return w.dispatcher.CurrentMonitor() }

func (w *Window) PrimaryMonitor() (*runtime.Monitor, error) { return w.dispatcher.PrimaryMonitor() }

func (w *Window) AvailableMonitors() ([]runtime.Monitor, error) {
	return w.dispatcher.AvailableMonitors()
}

func (w *Window) SetResizable(resizable bool) error { return w.dispatcher.SetResizable(resizable) }

func (w *Window) SetTitle(title string) error { return w.dispatcher.SetTitle(title) }

func (w *Window) Maximize() error { return w.dispatcher.Maximize() }

func (w *Window) Unmaximize() error { return w.dispatcher.Unmaximize() }

func (w *Window) Minimize() error { return w.dispatcher.Minimize() }

func (w *Window) Unminimize() error { return w.dispatcher.Unminimize() }

func (w *Window) Show() error { return w.dispatcher.Show() }

func (w *Window) Hide() error { return w.dispatcher.Hide() }

func (w *Window) Close() error { return w.dispatcher.Close() }

func (w *Window) SetDecorations(decorations bool) error {
	return w.dispatcher.SetDecorations(decorations)
}

func (w *Window) SetAlwaysOnTop(alwaysOnTop bool) error {
	return w.dispatcher.SetAlwaysOnTop(alwaysOnTop)
}

func (w *Window) SetSize(size runtime.Size) error { return w.dispatcher.SetSize(size) }

func (w *Window) SetMinSize(size *runtime.Size) error { return w.dispatcher.SetMinSize(size) }

func (w *Window) SetMaxSize(size *runtime.Size) error { return w.dispatcher.SetMaxSize(size) }

func (w *Window) SetPosition(position runtime.Position) error {
	return w.dispatcher.SetPosition(position)
}

func (w *Window) SetFullscreen(fullscreen bool) error { return w.dispatcher.SetFullscreen(fullscreen) }

func (w *Window) SetIcon(icon runtime.Icon) error { return w.dispatcher.SetIcon(icon) }

func (w *Window) StartDragging() error { return w.dispatcher.StartDragging() }

package endpoints

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

// windowMessage is {"cmd": <name>, "data": <argument>}.
type windowMessage struct {
	Cmd  string          `json:"cmd"`
	Data json.RawMessage `json:"data"`
}

type createWebview struct {
	Options config.WindowConfig `json:"options"`
}

type setIcon struct {
	Icon runtime.Icon `json:"icon"`
}

func (m windowMessage) bind(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: Window.%s: missing data", ErrInvalidMessage, m.Cmd)
	}
	return decode(ModuleWindow, m.Cmd, m.Data, v)
}

func (e *Endpoints) window(_ context.Context, host Host, caller Caller, msg json.RawMessage) (any, error) {
	var m windowMessage
	if err := decode(ModuleWindow, "", msg, &m); err != nil {
		return nil, err
	}
	if m.Cmd == "" {
		return nil, fmt.Errorf("%w: Window: missing cmd", ErrInvalidMessage)
	}
	if err := allowed(host, config.CategoryWindow); err != nil {
		return nil, err
	}
	if m.Cmd == "createWebview" {
		if err := allowed(host, config.CategoryWindowCreate); err != nil {
			return nil, err
		}
		var args createWebview
		if err := m.bind(&args); err != nil {
			return nil, err
		}
		return nil, e.createWebview(host, caller, args.Options)
	}

	d := caller.Dispatcher
	switch m.Cmd {
	// getters
	case "scaleFactor":
		return d.ScaleFactor()
	case "innerPosition":
		return d.InnerPosition()
	case "outerPosition":
		return d.OuterPosition()
	case "innerSize":
		return d.InnerSize()
	case "outerSize":
		return d.OuterSize()
	case "isFullscreen":
		return d.IsFullscreen()
	case "isMaximized":
		return d.IsMaximized()
	case "currentMonitor":
		return d.CurrentMonitor()
	case "primaryMonitor":
		return d.PrimaryMonitor()
	case "availableMonitors":
		return d.AvailableMonitors()

	// setters
	case "setResizable":
		var v bool
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetResizable(v)
	case "setTitle":
		var v string
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetTitle(v)
	case "maximize":
		return nil, d.Maximize()
	case "unmaximize":
		return nil, d.Unmaximize()
	case "minimize":
		return nil, d.Minimize()
	case "unminimize":
		return nil, d.Unminimize()
	case "show":
		return nil, d.Show()
	case "hide":
		return nil, d.Hide()
	case "close":
		return nil, d.Close()
	case "setDecorations":
		var v bool
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetDecorations(v)
	case "setAlwaysOnTop":
		var v bool
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetAlwaysOnTop(v)
	case "setSize":
		var v runtime.Size
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetSize(v)
	case "setMinSize":
		v, err := optionalSize(m)
		if err != nil {
			return nil, err
		}
		return nil, d.SetMinSize(v)
	case "setMaxSize":
		v, err := optionalSize(m)
		if err != nil {
			return nil, err
		}
		return nil, d.SetMaxSize(v)
	case "setPosition":
		var v runtime.Position
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetPosition(v)
	case "setFullscreen":
		var v bool
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetFullscreen(v)
	case "setIcon":
		var v setIcon
		if err := m.bind(&v); err != nil {
			return nil, err
		}
		return nil, d.SetIcon(v.Icon)
	case "startDragging":
		return nil, d.StartDragging()
	}
	return nil, unknownCommand(ModuleWindow, m.Cmd)
}

// optionalSize decodes a size that may be null or absent, which clears
// the constraint.
func optionalSize(m windowMessage) (*runtime.Size, error) {
	if len(m.Data) == 0 || string(m.Data) == "null" {
		return nil, nil
	}
	var v runtime.Size
	if err := m.bind(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// createWebview opens a window described by options and announces it to
// every other window. The label must be valid; a bad one panics.
func (e *Endpoints) createWebview(host Host, caller Caller, options config.WindowConfig) error {
	label := tag.MustLabel(options.Label)
	webview := runtime.NewWebviewAttributes(options.URL)
	pending := runtime.PendingWindowFromConfig(options, webview, label)
	created, err := host.CreateWindow(caller.Label, pending)
	if err != nil {
		return err
	}
	e.logger.Info("window created from script", "window", created, "parent", caller.Label)
	return host.EmitOthers(created, tag.WindowCreated, map[string]tag.Label{"label": created})
}

// Package endpoints implements the built-in command modules that window
// scripts reach with {"cmd":"tauri","__tauriModule":<Module>,"message":...}.
//
// Every module is gated by the config allowlist. A module whose category
// is not enabled answers with a NotAllowlistedError and never touches the
// window or the host.
package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/pkg/browser"
	"github.com/spf13/afero"

	"github.com/mattjoyce/webshell/internal/config"
	"github.com/mattjoyce/webshell/internal/log"
	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/settings"
	"github.com/mattjoyce/webshell/internal/tag"
)

// Module tags, matched case-sensitively against __tauriModule.
const (
	ModuleApp            = "App"
	ModuleProcess        = "Process"
	ModuleFs             = "Fs"
	ModuleWindow         = "Window"
	ModuleShell          = "Shell"
	ModuleEvent          = "Event"
	ModuleInternal       = "Internal"
	ModuleDialog         = "Dialog"
	ModuleCli            = "Cli"
	ModuleNotification   = "Notification"
	ModuleHTTP           = "Http"
	ModuleGlobalShortcut = "GlobalShortcut"
)

var (
	ErrUnknownModule  = errors.New("unknown module")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidMessage = errors.New("invalid module message")
)

// NotAllowlistedError reports a call into a capability the config does not
// enable.
type NotAllowlistedError struct {
	Category string
}

func (e *NotAllowlistedError) Error() string {
	return fmt.Sprintf("'%s' not allowlisted", e.Category)
}

// Host is the application as seen by the modules.
type Host interface {
	Config() *config.Config
	PackageInfo() config.PackageInfo
	VerifySalt(salt string) bool
	Trigger(event tag.Event, scope tag.Label, data *string)
	EmitAll(event tag.Event, payload any) error
	EmitTo(label tag.Label, event tag.Event, payload any) error
	EmitOthers(except tag.Label, event tag.Event, payload any) error
	// CreateWindow creates and attaches a window on behalf of parent and
	// returns its label.
	CreateWindow(parent tag.Label, pending runtime.PendingWindow) (tag.Label, error)
}

// Caller is the window that sent a module message.
type Caller struct {
	Label      tag.Label
	Dispatcher runtime.Dispatch
}

// Deps are the host capabilities the modules wrap. Zero fields get
// working defaults from New.
type Deps struct {
	FS         afero.Fs
	HTTPClient *http.Client
	Dialogs    Dialogs
	Notifier   Notifier
	Shortcuts  ShortcutManager
	// Settings persists per-application choices such as notification
	// permission. Nil disables persistence.
	Settings *settings.Store
	// Args are the application arguments matched by the Cli module.
	Args []string
	// OpenURL opens a URL or path with the system handler.
	OpenURL func(target string) error
	// Exit terminates the process.
	Exit func(code int)
	// Relaunch starts a fresh copy of the process.
	Relaunch func() error
	// Version is reported by App.getTauriVersion.
	Version string
	Logger  *slog.Logger
}

type handlerFunc func(ctx context.Context, host Host, caller Caller, msg json.RawMessage) (any, error)

// Endpoints dispatches module messages.
type Endpoints struct {
	deps    Deps
	logger  *slog.Logger
	modules map[string]handlerFunc

	listenerSeq atomic.Uint32
}

func New(deps Deps) *Endpoints {
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{}
	}
	if deps.Dialogs == nil {
		deps.Dialogs = UnavailableDialogs{}
	}
	if deps.Notifier == nil {
		deps.Notifier = ScriptNotifier{}
	}
	if deps.Shortcuts == nil {
		deps.Shortcuts = NewShortcutRegistry()
	}
	if deps.OpenURL == nil {
		deps.OpenURL = browser.OpenURL
	}
	if deps.Exit == nil {
		deps.Exit = os.Exit
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	if deps.Logger == nil {
		deps.Logger = log.WithComponent("endpoints")
	}
	e := &Endpoints{deps: deps, logger: deps.Logger}
	if e.deps.Relaunch == nil {
		e.deps.Relaunch = e.relaunchSelf
	}
	e.modules = map[string]handlerFunc{
		ModuleApp:            e.app,
		ModuleProcess:        e.process,
		ModuleFs:             e.fs,
		ModuleWindow:         e.window,
		ModuleShell:          e.shell,
		ModuleEvent:          e.event,
		ModuleInternal:       e.internal,
		ModuleDialog:         e.dialog,
		ModuleCli:            e.cli,
		ModuleNotification:   e.notification,
		ModuleHTTP:           e.http,
		ModuleGlobalShortcut: e.globalShortcut,
	}
	return e
}

// Shortcuts returns the shortcut manager the GlobalShortcut module uses.
func (e *Endpoints) Shortcuts() ShortcutManager { return e.deps.Shortcuts }

// Run handles one module message. payload is the whole invoke payload; the
// module's own message sits under its "message" key.
func (e *Endpoints) Run(ctx context.Context, host Host, caller Caller, module string, payload json.RawMessage) (any, error) {
	handler, ok := e.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModule, module)
	}
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if len(envelope.Message) == 0 {
		return nil, fmt.Errorf("%w: missing message", ErrInvalidMessage)
	}
	return handler(ctx, host, caller, envelope.Message)
}

func allowed(host Host, category string) error {
	if host.Config().Tauri.Allowlist.Allowed(category) {
		return nil
	}
	return &NotAllowlistedError{Category: category}
}

// decodeCommand reads the "cmd" discriminator of msg.
func decodeCommand(module string, msg json.RawMessage) (string, error) {
	var head struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidMessage, module, err)
	}
	if head.Cmd == "" {
		return "", fmt.Errorf("%w: %s: missing cmd", ErrInvalidMessage, module)
	}
	return head.Cmd, nil
}

func decode(module, cmd string, msg json.RawMessage, v any) error {
	if err := json.Unmarshal(msg, v); err != nil {
		return fmt.Errorf("%w: %s.%s: %v", ErrInvalidMessage, module, cmd, err)
	}
	return nil
}

func unknownCommand(module, cmd string) error {
	return fmt.Errorf("%w %s.%s", ErrUnknownCommand, module, cmd)
}

func (e *Endpoints) relaunchSelf() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("relaunch: %w", err)
	}
	e.logger.Info("relaunched", "pid", cmd.Process.Pid)
	e.deps.Exit(0)
	return nil
}

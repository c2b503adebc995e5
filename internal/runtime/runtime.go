// Package runtime is the boundary between the shell and a native webview
// backend.
//
// A backend implements Runtime once and hands out one Dispatch per window.
// Nothing outside a backend package depends on a concrete webview engine;
// tests use the headless backend or a mock Dispatch.
package runtime

import (
	"context"
	"errors"
)

var (
	// ErrWindowClosed is returned by Dispatch methods once the native window
	// is gone.
	ErrWindowClosed = errors.New("window closed")
	// ErrUnsupported is returned for operations a backend cannot perform.
	ErrUnsupported = errors.New("operation not supported by this backend")
	// ErrNoMonitor is returned when a monitor query has nothing to report.
	ErrNoMonitor = errors.New("no monitor found")
)

// Runtime creates windows and drives the platform event loop.
type Runtime interface {
	// CreateWindow turns a pending window into a live native window.
	CreateWindow(pending PendingWindow) (DetachedWindow, error)
	// Run blocks on the event loop until ctx is cancelled or the backend
	// decides to exit.
	Run(ctx context.Context) error
}

// Factory constructs a Runtime. Backends register one at build time.
type Factory func() (Runtime, error)

//go:generate mockgen -destination=mocks/mock_dispatch.go -package=mocks github.com/mattjoyce/webshell/internal/runtime Dispatch

// Dispatch is a handle to a single live window. Implementations must be
// safe for concurrent use and marshal native calls onto the UI thread
// themselves.
type Dispatch interface {
	// RunOnMainThread schedules fn on the UI thread.
	RunOnMainThread(fn func()) error
	// OnWindowEvent registers a listener for native window events.
	OnWindowEvent(fn func(WindowEvent))
	// CreateWindow creates a sibling window from this window's thread.
	CreateWindow(pending PendingWindow) (DetachedWindow, error)

	ScaleFactor() (float64, error)
	InnerPosition() (PhysicalPosition, error)
	OuterPosition() (PhysicalPosition, error)
	InnerSize() (PhysicalSize, error)
	OuterSize() (PhysicalSize, error)
	IsFullscreen() (bool, error)
	IsMaximized() (bool, error)
	CurrentMonitor() (*Monitor, error)
	PrimaryMonitor() (*Monitor, error)
	AvailableMonitors() ([]Monitor, error)

	SetResizable(resizable bool) error
	SetTitle(title string) error
	Maximize() error
	Unmaximize() error
	Minimize() error
	Unminimize() error
	Show() error
	Hide() error
	Close() error
	SetDecorations(decorations bool) error
	SetAlwaysOnTop(alwaysOnTop bool) error
	SetSize(size Size) error
	SetMinSize(size *Size) error
	SetMaxSize(size *Size) error
	SetPosition(position Position) error
	SetFullscreen(fullscreen bool) error
	SetIcon(icon Icon) error
	StartDragging() error
	EvalScript(script string) error
}
